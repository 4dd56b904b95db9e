package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Source loads the body markup and stylesheet links of a page.
type Source interface {
	Load(ctx context.Context, pageURL string) (*Page, error)
	Close() error
}

// Capturer turns a page into a PageSnapshot: it loads the page through its
// Source, fetches every linked stylesheet, and applies the size limits.
type Capturer struct {
	source       Source
	client       *http.Client
	ua           string
	maxHTML      int
	maxCSS       int
	maxSheetSize int64
	skip         []string
	logger       *zap.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithHTTPClient sets the client used for stylesheet requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cp *Capturer) { cp.client = c }
}

// WithUserAgent sets the User-Agent header on stylesheet requests.
func WithUserAgent(ua string) Option {
	return func(cp *Capturer) { cp.ua = ua }
}

// WithLimits sets the character limits for markup and CSS.
func WithLimits(maxHTML, maxCSS int) Option {
	return func(cp *Capturer) {
		cp.maxHTML = maxHTML
		cp.maxCSS = maxCSS
	}
}

// WithSkipStylesheets sets doublestar globs, matched against host/path,
// for stylesheets that are never fetched.
func WithSkipStylesheets(patterns []string) Option {
	return func(cp *Capturer) { cp.skip = patterns }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cp *Capturer) { cp.logger = l }
}

// New creates a Capturer reading pages through source.
func New(source Source, opts ...Option) *Capturer {
	cp := &Capturer{
		source:       source,
		client:       &http.Client{Timeout: 20 * time.Second},
		ua:           "stylelens/1.0",
		maxHTML:      5000,
		maxCSS:       30000,
		maxSheetSize: 2 << 20,
		logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(cp)
	}
	return cp
}

// Close releases the underlying Source.
func (c *Capturer) Close() error {
	return c.source.Close()
}

// Capture loads pageURL and returns its bounded snapshot.
func (c *Capturer) Capture(ctx context.Context, pageURL string) (*PageSnapshot, error) {
	if err := validatePageURL(pageURL); err != nil {
		return nil, err
	}

	page, err := c.source.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	sheets := make([]string, 0, len(page.Stylesheets))
	for _, href := range page.Stylesheets {
		sheets = append(sheets, c.fetchStylesheet(ctx, href))
	}

	css := strings.Join(sheets, "\n\n")
	if strings.TrimSpace(css) == "" {
		css = NoExternalCSS
	}

	html, htmlCut := truncate(page.BodyHTML, c.maxHTML, HTMLTruncatedMarker)
	css, cssCut := truncate(css, c.maxCSS, CSSTruncatedMarker)

	c.logger.Debug("captured page",
		zap.String("url", page.URL),
		zap.Int("stylesheets", len(page.Stylesheets)),
		zap.Bool("html_truncated", htmlCut),
		zap.Bool("css_truncated", cssCut))

	return &PageSnapshot{
		URL:           page.URL,
		HTML:          html,
		CSS:           css,
		HTMLTruncated: htmlCut,
		CSSTruncated:  cssCut,
		Stylesheets:   page.Stylesheets,
		CapturedAt:    time.Now().UTC(),
	}, nil
}

// fetchStylesheet returns the sheet's text, or a CSS comment describing why
// it is missing. A failed sheet never fails the capture.
func (c *Capturer) fetchStylesheet(ctx context.Context, href string) string {
	if c.skipped(href) {
		return fmt.Sprintf("/* Skipped CSS from %s */", href)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return fmt.Sprintf("/* Error fetching CSS from %s */", href)
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "text/css,*/*;q=0.1")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("stylesheet fetch failed", zap.String("href", href), zap.Error(err))
		return fmt.Sprintf("/* Error fetching CSS from %s */", href)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("stylesheet not available", zap.String("href", href), zap.Int("status", resp.StatusCode))
		return fmt.Sprintf("/* Could not fetch CSS from %s */", href)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSheetSize))
	if err != nil {
		return fmt.Sprintf("/* Error fetching CSS from %s */", href)
	}
	return string(body)
}

func (c *Capturer) skipped(href string) bool {
	if len(c.skip) == 0 {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	key := u.Host + u.Path
	for _, pattern := range c.skip {
		if ok, _ := doublestar.Match(pattern, key); ok {
			return true
		}
	}
	return false
}

func validatePageURL(pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid page url %q: only http and https pages can be captured", pageURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid page url %q: missing host", pageURL)
	}
	return nil
}
