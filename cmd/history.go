package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent suggestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Try `stylelens suggest <url>`.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tRESULT\tHTML\tCSS\tTOOK\tURL")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Kind, r.HTMLChars, r.CSSChars,
				(time.Duration(r.DurationMS) * time.Millisecond).Round(100*time.Millisecond),
				r.PageURL)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
