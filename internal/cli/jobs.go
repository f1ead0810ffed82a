package cli

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

const jobTimeout = 10 * time.Minute

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Send every due reminder once",
	Long: `Run a single reminder sweep: email each due, unsent, incomplete reminder
and mark it sent. Delivery failures are logged and retried by the next sweep.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		processed, err := a.reminders.SweepDue(ctx)
		if err != nil {
			return errors.Annotate(err, "sweeping reminders")
		}
		cmd.Printf("Processed %s reminder(s) in %s\n", humanize.Comma(int64(processed)), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Email the weekly summary to subscribed users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.summaries.SendWeeklySummaries(ctx)
		if err != nil {
			return errors.Annotate(err, "sending weekly summaries")
		}
		cmd.Printf("Weekly summaries: %s sent, %s failed\n", humanize.Comma(int64(report.Sent)), humanize.Comma(int64(report.Failed)))
		return nil
	},
}
