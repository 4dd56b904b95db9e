package capture

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/config"
)

// NewFromConfig builds a Capturer whose Source follows cfg.Browser.
func NewFromConfig(cfg config.CaptureConfig, logger *zap.Logger) *Capturer {
	client := &http.Client{Timeout: cfg.Timeout}

	var source Source
	if cfg.Browser {
		source = NewBrowserSource(cfg.BrowserURL, cfg.Timeout, logger.Named("browser"))
	} else {
		source = NewHTTPSource(client, cfg.UserAgent, cfg.MaxPageBytes, logger)
	}

	return New(source,
		WithHTTPClient(client),
		WithUserAgent(cfg.UserAgent),
		WithLimits(cfg.MaxHTMLChars, cfg.MaxCSSChars),
		WithSkipStylesheets(cfg.SkipStylesheets),
		WithLogger(logger),
	)
}
