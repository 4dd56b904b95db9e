package capture

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="/main.css">
  <link rel="Preload Stylesheet" href="missing.css">
  <link rel="stylesheet" href="/vendor/reset.css">
  <link rel="icon" href="/favicon.ico">
</head>
<body><main><h1>Hello</h1></main></body>
</html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, pageTemplate)
	})
	mux.HandleFunc("/main.css", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "body { color: red; }")
	})
	mux.HandleFunc("/vendor/reset.css", func(w http.ResponseWriter, r *http.Request) {
		t.Error("skipped stylesheet was fetched")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCaptureHTTP(t *testing.T) {
	srv := newSite(t)
	cp := New(NewHTTPSource(srv.Client(), "test", 0, nil),
		WithHTTPClient(srv.Client()),
		WithSkipStylesheets([]string{"**/vendor/**"}),
	)
	defer cp.Close()

	snap, err := cp.Capture(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, "<main><h1>Hello</h1></main>", strings.TrimSpace(snap.HTML))
	assert.False(t, snap.HTMLTruncated)
	require.Len(t, snap.Stylesheets, 3)

	parts := strings.Split(snap.CSS, "\n\n")
	require.Len(t, parts, 3)
	assert.Equal(t, "body { color: red; }", parts[0])
	assert.Equal(t, "/* Could not fetch CSS from "+srv.URL+"/missing.css */", parts[1])
	assert.Equal(t, "/* Skipped CSS from "+srv.URL+"/vendor/reset.css */", parts[2])
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestCaptureStylesheetTransportError(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	src := &fakeSource{page: &Page{URL: "https://example.com/", BodyHTML: "<p>x</p>", Stylesheets: []string{deadURL + "/a.css"}}}
	snap, err := New(src).Capture(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "/* Error fetching CSS from "+deadURL+"/a.css */", snap.CSS)
}

func TestCaptureNoStylesheets(t *testing.T) {
	src := &fakeSource{page: &Page{URL: "https://example.com/", BodyHTML: "<p style=\"color:red\">x</p>"}}
	snap, err := New(src).Capture(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, NoExternalCSS, snap.CSS)
}

func TestCaptureAppliesLimits(t *testing.T) {
	body := strings.Repeat("é", 12)
	src := &fakeSource{page: &Page{URL: "https://example.com/", BodyHTML: body}}
	snap, err := New(src, WithLimits(10, 20)).Capture(context.Background(), "https://example.com/")
	require.NoError(t, err)

	assert.True(t, snap.HTMLTruncated)
	assert.Equal(t, strings.Repeat("é", 10)+HTMLTruncatedMarker, snap.HTML)
	assert.True(t, snap.CSSTruncated, "placeholder CSS exceeds 20 chars")
	assert.True(t, strings.HasSuffix(snap.CSS, CSSTruncatedMarker))
}

func TestCaptureRejectsBadURL(t *testing.T) {
	src := &fakeSource{page: &Page{}}
	for _, u := range []string{"", "ftp://example.com", "chrome://extensions", "https://"} {
		_, err := New(src).Capture(context.Background(), u)
		assert.Error(t, err, "url %q", u)
	}
	assert.Zero(t, src.calls)
}

func TestHTTPSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.Client(), "test", 0, nil).Load(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestParsePageResolvesHrefs(t *testing.T) {
	base, _ := url.Parse("https://example.com/blog/post")
	page, err := parsePage(pageTemplate, base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/main.css",
		"https://example.com/blog/missing.css",
		"https://example.com/vendor/reset.css",
	}, page.Stylesheets)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		limit   int
		want    string
		wantCut bool
	}{
		{"under limit", "abc", 5, "abc", false},
		{"at limit", "abcde", 5, "abcde", false},
		{"over limit", "abcdef", 5, "abcde" + HTMLTruncatedMarker, true},
		{"counts runes", "ééé", 2, "éé" + HTMLTruncatedMarker, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := truncate(tt.in, tt.limit, HTMLTruncatedMarker)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCut, cut)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

type fakeSource struct {
	page  *Page
	calls int
}

func (f *fakeSource) Load(ctx context.Context, pageURL string) (*Page, error) {
	f.calls++
	return f.page, nil
}

func (f *fakeSource) Close() error { return nil }
