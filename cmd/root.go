package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/stylelens/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stylelens",
	Short: "AI design suggestions for any web page",
	Long: `stylelens captures a page's markup and stylesheets, asks an AI design
service what to improve, and shows the analysis with ready-to-copy HTML and
CSS. Follow-up questions keep the last suggestion as context.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
