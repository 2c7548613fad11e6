package worker

import (
	"context"
	"log/slog"
	"time"

	"daily-digest/internal/pipeline"
)

// Runner runs the digest pipeline once.
type Runner interface {
	Run(ctx context.Context, trigger string) (pipeline.Result, error)
}

// Scheduler runs the pipeline every Interval. The first run happens one
// Interval after Start, not immediately, so restarts do not resend.
type Scheduler struct {
	Runner   Runner
	Interval time.Duration
}

func (w *Scheduler) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 24 * time.Hour
	}
	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Scheduler) runOnce(ctx context.Context) {
	res, err := w.Runner.Run(ctx, "schedule")
	if err != nil {
		slog.Error("scheduler: run failed", "run_id", res.RunID, "err", err)
		return
	}
	slog.Info("scheduler: run finished", "run_id", res.RunID, "delivered", res.Delivered())
}
