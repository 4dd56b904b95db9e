package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTTPSource reads pages with a single GET. Markup built by scripts after
// load is not seen; use BrowserSource for those pages.
type HTTPSource struct {
	client  *http.Client
	ua      string
	maxBody int64
	logger  *zap.Logger
}

// NewHTTPSource creates an HTTPSource. A nil client gets a 20s timeout.
func NewHTTPSource(client *http.Client, ua string, maxBody int64, logger *zap.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxBody <= 0 {
		maxBody = 5 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{client: client, ua: ua, maxBody: maxBody, logger: logger}
}

// Load GETs pageURL and extracts the body markup and stylesheet links.
func (s *HTTPSource) Load(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("capture: new request: %w", err)
	}
	req.Header.Set("User-Agent", s.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("capture: %s returned status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("capture: read body: %w", err)
	}

	base := resp.Request.URL
	page, err := parsePage(string(body), base)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched page",
		zap.String("url", base.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("size", len(body)))
	return page, nil
}

// Close is a no-op.
func (s *HTTPSource) Close() error { return nil }

// parsePage extracts the inner markup of <body> and the absolute hrefs of
// every <link rel="stylesheet">, in document order.
func parsePage(markup string, base *url.URL) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("capture: parse html: %w", err)
	}

	page := &Page{URL: base.String()}
	if body := findElement(doc, atom.Body); body != nil {
		var b strings.Builder
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&b, c); err != nil {
				return nil, fmt.Errorf("capture: render body: %w", err)
			}
		}
		page.BodyHTML = b.String()
	}

	collectStylesheets(doc, base, &page.Stylesheets)
	return page, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func collectStylesheets(n *html.Node, base *url.URL, out *[]string) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Link && isStylesheet(n) {
		if href := attr(n, "href"); href != "" {
			if ref, err := base.Parse(href); err == nil {
				*out = append(*out, ref.String())
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectStylesheets(c, base, out)
	}
}

func isStylesheet(n *html.Node) bool {
	for _, token := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
		if token == "stylesheet" {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
