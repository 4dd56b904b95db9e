package report

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Design suggestions{{if .URL}} for {{.URL}}{{end}}</title>
  <style>
    :root { --border: #d0d7de; --muted: #57606a; --accent: #0969da; }
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; line-height: 1.5; }
    header { border-bottom: 1px solid var(--border); margin-bottom: 1.5rem; }
    header p { color: var(--muted); margin: .25rem 0; }
    .card { border: 1px solid var(--border); border-radius: 6px; margin: 1rem 0; padding: 1rem; }
    .card-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: .5rem; }
    pre { background: #f6f8fa; padding: .75rem; border-radius: 6px; overflow-x: auto; }
    .alert { padding: .75rem 1rem; border-radius: 6px; margin: 1rem 0; }
    .alert-danger { background: #ffebe9; border: 1px solid #ff8182; }
    .alert-warning { background: #fff8c5; border: 1px solid #d4a72c; }
    .followup .prompt-row { display: none; }
    .conversation-pair { margin: 1rem 0; }
    details { margin-top: 2rem; }
    summary { cursor: pointer; color: var(--accent); }
    button.copy-btn { cursor: pointer; }
  </style>
</head>
<body>
  <header>
    <h1>Design suggestions</h1>
    {{if .URL}}<p>Page: <a href="{{.URL}}">{{.URL}}</a></p>{{end}}
    {{if .CapturedAt}}<p>Captured {{.CapturedAt}}</p>{{end}}
    <p>Generated {{.GeneratedAt}}</p>
  </header>
  {{if not .HasCode}}<div class="alert alert-warning">The response carried no code suggestions.</div>{{end}}
  <main>
    {{.Suggestions}}
  </main>
  <details>
    <summary>Raw AI response</summary>
    <div class="transcript">
      {{.Transcript}}
    </div>
  </details>
  <script>
    document.addEventListener('click', function (e) {
      var btn = e.target.closest('[data-copy-target]');
      if (!btn) return;
      var target = document.getElementById(btn.getAttribute('data-copy-target'));
      if (!target || !navigator.clipboard) return;
      navigator.clipboard.writeText(target.innerText).then(function () {
        var label = btn.textContent;
        btn.textContent = 'Copied!';
        setTimeout(function () { btn.textContent = label; }, 1500);
      });
    });
  </script>
</body>
</html>
`
