package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const stylesheetHrefsJS = `() => Array.from(document.querySelectorAll('link[rel~="stylesheet"]'))
	.map(l => l.href)
	.filter(h => h)`

// BrowserSource renders pages in Chrome so markup built by scripts is
// captured. Chrome is launched (or connected to) on first use.
type BrowserSource struct {
	remoteURL string
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewBrowserSource creates a BrowserSource. An empty remoteURL launches a
// local headless Chrome.
func NewBrowserSource(remoteURL string, timeout time.Duration, logger *zap.Logger) *BrowserSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserSource{remoteURL: remoteURL, timeout: timeout, logger: logger}
}

func (s *BrowserSource) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}

	wsURL := s.remoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("capture: launch chrome: %w", err)
		}
		wsURL = u
		s.lnch = l
		s.logger.Info("launched local chrome", zap.String("url", wsURL))
	} else {
		s.logger.Info("connecting to remote chrome", zap.String("url", wsURL))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("capture: connect chrome: %w", err)
	}
	s.browser = b
	return b, nil
}

// Load opens pageURL in a new tab and reads the live DOM.
func (s *BrowserSource) Load(ctx context.Context, pageURL string) (*Page, error) {
	b, err := s.connect()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("capture: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p := page.Context(navCtx)

	if err := p.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("capture: navigate %s: %w", pageURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		s.logger.Warn("wait load timeout", zap.String("url", pageURL), zap.Error(err))
	}

	body, err := p.Eval(`() => document.body ? document.body.innerHTML : ""`)
	if err != nil {
		return nil, fmt.Errorf("capture: read body: %w", err)
	}
	hrefs, err := p.Eval(stylesheetHrefsJS)
	if err != nil {
		return nil, fmt.Errorf("capture: read stylesheets: %w", err)
	}
	location, err := p.Eval(`() => location.href`)
	if err != nil {
		return nil, fmt.Errorf("capture: read location: %w", err)
	}

	out := &Page{URL: location.Value.Str(), BodyHTML: body.Value.Str()}
	for _, h := range hrefs.Value.Arr() {
		out.Stylesheets = append(out.Stylesheets, h.Str())
	}
	return out, nil
}

// Close shuts down Chrome if this source launched it.
func (s *BrowserSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("closing chrome", zap.Error(err))
		}
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return nil
}
