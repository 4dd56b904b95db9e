package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/ziadkadry99/stylelens/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio exposing suggest_design and ask_followup. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		mcpserver.Version = Version
		logger.Info("mcp server started on stdio", zap.String("backend", cfg.Backend.BaseURL))
		return mcpserver.NewServer(ctrl, logger.Named("mcp")).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
