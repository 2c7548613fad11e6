package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"daily-digest/internal/redisclient"
	"daily-digest/internal/storage"

	"github.com/spf13/cobra"
)

var eventsLimit int64

// eventsCmd lists the pipeline events recorded in Redis, newest first.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent pipeline events from Redis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is not set; no events are recorded")
		}
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewEventStore(rdb, cfg.Redis.EventsKey, cfg.Redis.MaxEvents)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		events, err := store.Recent(ctx, eventsLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "AT\tRUN\tTRIGGER\tSTAGE\tOUTCOME\tDURATION\tERROR")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.At.UTC().Format(time.RFC3339), e.RunID, e.Trigger, e.Stage, e.Outcome, e.Duration.Round(time.Millisecond), e.Error)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().Int64VarP(&eventsLimit, "limit", "n", 20, "number of events to show")
}
