package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/history"
	"github.com/ziadkadry99/stylelens/internal/popup"
	"github.com/ziadkadry99/stylelens/internal/server"
	"github.com/ziadkadry99/stylelens/internal/webui"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the stylelens popup in the browser",
	Long:  `Starts the web UI: extract a page, request suggestions and ask follow-ups from the browser. Runs are recorded to the history database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer logger.Sync()

		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctrl, capturer := newController(cfg, logger, store)
		defer capturer.Close()

		sessions := popup.NewSessions(cfg.Server.SessionTTL)
		sessions.OnEvicted(func(id string) {
			logger.Debug("session closed", zap.String("session", id))
		})

		srv := server.New(server.Config{
			Port:        cfg.Server.Port,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, logger.Named("http"))

		ui := webui.New(sessions, ctrl, logger.Named("webui"))
		ui.RegisterRoutes(srv.Router())
		ui.RegisterSocket(srv.RawRouter())
		history.RegisterRoutes(srv.Router(), store)

		return serveUntilSignal(srv, logger, fmt.Sprintf("stylelens %s: popup at http://localhost:%d (backend %s)", Version, cfg.Server.Port, cfg.Backend.BaseURL))
	},
}

// serveUntilSignal runs srv until SIGINT or SIGTERM, then drains it.
func serveUntilSignal(srv *server.Server, logger *zap.Logger, banner string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	fmt.Fprintln(os.Stderr, banner)
	return srv.Start()
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on")
	rootCmd.AddCommand(serverCmd)
}
