package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/analysis"
	"github.com/ziadkadry99/stylelens/internal/popup"
	"github.com/ziadkadry99/stylelens/internal/progress"
	"github.com/ziadkadry99/stylelens/internal/render"
	"github.com/ziadkadry99/stylelens/internal/report"
)

var (
	suggestAsk []string
	suggestOut string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <url>",
	Short: "Capture a page and print AI design suggestions",
	Long: `Captures the page, sends it to the design service and prints the analysis
with suggested HTML and CSS. Each --ask is sent as a follow-up question in
order. --out also writes a standalone HTML report.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var rec popup.Recorder
	if database, store, err := openHistory(cfg); err != nil {
		logger.Warn("history disabled", zap.Error(err))
	} else {
		defer database.Close()
		rec = store
	}

	ctrl, capturer := newController(cfg, logger, rec)
	defer capturer.Close()

	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()
	sess := popup.NewSession()

	steps := 2 + len(suggestAsk)
	if suggestOut != "" {
		steps++
	}
	reporter := progress.NewReporter(os.Stderr)
	reporter.Start(steps)

	reporter.Step("Capturing page")
	if out := ctrl.Extract(ctx, sess, args[0]); out.Kind.Failed() {
		reporter.Finish()
		return fmt.Errorf("capturing %s: %w", args[0], out.Err)
	}

	reporter.Step("Generating AI suggestions")
	out := ctrl.Suggest(ctx, sess)
	if out.Kind.Failed() {
		reporter.Finish()
		return outcomeError(out)
	}

	type answered struct{ question, answer string }
	var answers []answered
	for i, q := range suggestAsk {
		reporter.Step(fmt.Sprintf("Asking follow-up %d/%d", i+1, len(suggestAsk)))
		res := ctrl.Ask(ctx, sess, q)
		if res.Kind == popup.KindAnswer {
			answers = append(answers, answered{q, res.Text})
		} else {
			answers = append(answers, answered{q, "Error: " + outcomeError(res).Error()})
		}
	}

	if suggestOut != "" {
		reporter.Step("Writing report")
		if err := writeReport(suggestOut, sess, analysis.Parse(out.Text), out.Text); err != nil {
			reporter.Finish()
			return err
		}
	}
	reporter.Finish()

	if out.Kind == popup.KindNoCode {
		fmt.Fprintln(os.Stderr, "Warning: "+render.MsgNoCode)
	}
	fmt.Fprintln(stdout, analysis.Markdown(out.Text))
	for _, a := range answers {
		fmt.Fprintf(stdout, "\n---\n\n**Q:** %s\n\n%s\n", a.question, a.answer)
	}
	if suggestOut != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", suggestOut)
	}
	return nil
}

func writeReport(path string, sess *popup.Session, sections analysis.Sections, raw string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	r := report.Report{
		Sections:  sections,
		Raw:       raw,
		Exchanges: sess.Conversation().Exchanges(),
	}
	if snap := sess.Snapshot(); snap != nil {
		r.URL, r.CapturedAt = snap.URL, snap.CapturedAt
	}
	if err := report.Write(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// outcomeError turns a failed outcome into the message the popup would show.
func outcomeError(out popup.Outcome) error {
	if out.Err == nil {
		return errors.New(string(out.Kind))
	}
	return out.Err
}

func init() {
	suggestCmd.Flags().StringArrayVar(&suggestAsk, "ask", nil, "follow-up question to ask after the suggestions (repeatable)")
	suggestCmd.Flags().StringVarP(&suggestOut, "out", "o", "", "write a standalone HTML report to this path")
	rootCmd.AddCommand(suggestCmd)
}
