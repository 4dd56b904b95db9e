package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/stylelens/internal/capture"
)

var captureCmd = &cobra.Command{
	Use:   "capture <url>",
	Short: "Capture a page and print the snapshot as JSON",
	Long:  `Fetches the page body and its external stylesheets with the configured limits and prints exactly what would be sent for analysis.`,
	Args:  cobra.ExactArgs(1),
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

		capturer := capture.NewFromConfig(cfg.Capture, logger.Named("capture"))
		defer capturer.Close()

		snap, err := capturer.Capture(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("capturing %s: %w", args[0], err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(snap)
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
