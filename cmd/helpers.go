package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/config"
	"github.com/ziadkadry99/stylelens/internal/db"
	"github.com/ziadkadry99/stylelens/internal/history"
	"github.com/ziadkadry99/stylelens/internal/logging"
	"github.com/ziadkadry99/stylelens/internal/popup"
	"github.com/ziadkadry99/stylelens/internal/suggest"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `stylelens init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command. Console output goes to w,
// which is always stderr so stdout stays clean for results.
func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	logCfg := cfg.Log
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg, w)
}

// openHistory opens the run log under the data directory.
func openHistory(cfg *config.Config) (*db.DB, *history.Store, error) {
	path := cfg.HistoryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	return database, history.NewStore(database), nil
}

// newController wires capture, the backend client and, when rec is
// non-nil, the run log.
func newController(cfg *config.Config, logger *zap.Logger, rec popup.Recorder) (*popup.Controller, *capture.Capturer) {
	capturer := capture.NewFromConfig(cfg.Capture, logger.Named("capture"))
	client := suggest.NewClientFromConfig(cfg.Backend, logger.Named("suggest"))

	opts := []popup.Option{popup.WithLogger(logger.Named("popup"))}
	if rec != nil {
		opts = append(opts, popup.WithRecorder(rec))
	}
	return popup.NewController(capturer, client, opts...), capturer
}
