package observe

import (
	"context"
	"log/slog"
	"time"
)

// Stage names a pipeline step.
type Stage string

const (
	StageWeather   Stage = "weather"
	StageNews      Stage = "news"
	StageSummarize Stage = "summarize"
	StageCompose   Stage = "compose"
	StageDeliver   Stage = "deliver"
	StageRun       Stage = "run"
)

// Outcome is how a stage ended.
type Outcome string

const (
	OK Outcome = "ok"
	// Recovered means the stage failed but the run continued with
	// substitute content or without the stage's effect.
	Recovered Outcome = "recovered"
	// Failed means the stage aborted the run.
	Failed Outcome = "failed"
)

// Event reports one finished stage.
type Event struct {
	RunID    string        `json:"run_id"`
	Trigger  string        `json:"trigger,omitempty"`
	Stage    Stage         `json:"stage"`
	Outcome  Outcome       `json:"outcome"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Hook receives pipeline events. Implementations must not block for long and
// must be safe for concurrent use.
type Hook interface {
	Observe(ctx context.Context, e Event)
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, e Event)

func (f HookFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// Multi fans an event out to several hooks in order. Nil entries are skipped.
type Multi []Hook

func (m Multi) Observe(ctx context.Context, e Event) {
	for _, h := range m {
		if h != nil {
			h.Observe(ctx, e)
		}
	}
}

// Logger writes events to slog: failures at error level, recovered stages at
// warn, the rest at debug.
type Logger struct {
	L *slog.Logger
}

func (l Logger) Observe(ctx context.Context, e Event) {
	lg := l.L
	if lg == nil {
		lg = slog.Default()
	}
	attrs := []any{"run_id", e.RunID, "stage", string(e.Stage), "outcome", string(e.Outcome), "duration", e.Duration}
	if e.Error != "" {
		attrs = append(attrs, "err", e.Error)
	}
	switch e.Outcome {
	case Failed:
		lg.ErrorContext(ctx, "pipeline: stage failed", attrs...)
	case Recovered:
		lg.WarnContext(ctx, "pipeline: stage recovered", attrs...)
	default:
		lg.DebugContext(ctx, "pipeline: stage done", attrs...)
	}
}
