package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"daily-digest/internal/mailer"
	"daily-digest/internal/pipeline"

	"github.com/spf13/cobra"
)

var runDryRun bool

// runCmd executes the pipeline once, the same way a trigger request does.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the digest pipeline once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		var notifier pipeline.Notifier = newSMTP(cfg)
		if runDryRun {
			notifier = &mailer.WriterSender{W: cmd.OutOrStdout(), From: cfg.Mail.Sender, Recipient: cfg.Mail.Recipient}
		}
		runner, cleanup := newRunner(cfg, notifier)
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := runner.Run(ctx, "cli")
		if err != nil {
			return err
		}
		if !res.Delivered() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: digest not delivered: %v\n", res.DeliveryErr)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Run %s finished (delivered=%t)\n", res.RunID, res.Delivered())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the digest instead of emailing it")
}
