package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/backend"
	"github.com/ziadkadry99/stylelens/internal/llm"
	"github.com/ziadkadry99/stylelens/internal/server"
)

var backendPort int

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Run a local design-suggestion service",
	Long: `Starts a service answering /api/suggest and /api/prompt with the configured
AI provider, so the popup can run without a hosted backend. Point
backend.base_url at it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.BackendPort = backendPort
		}
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer logger.Sync()

		provider, err := llm.NewProvider(cfg.AI)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		logger.Info("ai provider",
			zap.String("provider", provider.Name()),
			zap.String("model", cfg.AI.Model),
			zap.Int("requests_per_minute", cfg.AI.RequestsPerMinute))

		srv := server.New(server.Config{
			Port:        cfg.Server.BackendPort,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, logger.Named("http"))
		backend.RegisterRoutes(srv.Router(), backend.NewService(provider, logger.Named("backend")))

		return serveUntilSignal(srv, logger, fmt.Sprintf("stylelens %s: design service on http://localhost:%d", Version, cfg.Server.BackendPort))
	},
}

func init() {
	backendCmd.Flags().IntVar(&backendPort, "port", 8787, "port to listen on")
	rootCmd.AddCommand(backendCmd)
}
