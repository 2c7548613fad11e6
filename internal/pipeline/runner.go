package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"daily-digest/internal/ai"
	"daily-digest/internal/digest"
	"daily-digest/internal/model"
	"daily-digest/internal/observe"
	"daily-digest/internal/tomorrow"

	"github.com/google/uuid"
)

// WeatherSource fetches daily forecast intervals.
type WeatherSource interface {
	Forecast(ctx context.Context, loc model.Location) ([]model.ForecastDay, error)
}

// NewsSource fetches news grouped by keyword.
type NewsSource interface {
	Topics(ctx context.Context, keywords []string) ([]model.NewsTopic, error)
}

// Notifier delivers a composed digest.
type Notifier interface {
	Send(ctx context.Context, d model.Digest) error
}

// Runner executes weather -> news -> summary -> compose -> deliver strictly in
// sequence. A Runner holds no per-run state and may be shared by concurrent
// triggers; nothing serializes them.
type Runner struct {
	Weather    WeatherSource
	News       NewsSource
	Summarizer ai.Summarizer
	Notifier   Notifier
	Hook       observe.Hook
	Location   model.Location
	Keywords   []string

	now   func() time.Time
	newID func() string
}

// Result describes a run that reached the delivery stage.
type Result struct {
	RunID  string
	Digest model.Digest
	// DeliveryErr is the swallowed notifier error, if any.
	DeliveryErr error
}

// Delivered reports whether the notifier accepted the digest.
func (r Result) Delivered() bool { return r.DeliveryErr == nil }

// Run executes the pipeline once. trigger labels the caller in events
// ("http", "cli", "schedule").
//
// Upstream fetch failures (*model.FetchError) are folded into the digest.
// Weather schema errors and summarizer errors abort the run and are
// returned. Delivery errors are logged, reported to the hook and returned in
// Result only; Run still succeeds.
func (r *Runner) Run(ctx context.Context, trigger string) (Result, error) {
	res := Result{RunID: r.id()}
	runStart := r.clock()
	lg := slog.With("run_id", res.RunID, "trigger", trigger)
	lg.Info("pipeline: run started", "location", r.Location.String(), "keywords", r.Keywords)

	fail := func(stage observe.Stage, start time.Time, err error) (Result, error) {
		r.emit(ctx, res.RunID, trigger, stage, observe.Failed, err, start)
		r.emit(ctx, res.RunID, trigger, observe.StageRun, observe.Failed, err, runStart)
		return res, fmt.Errorf("pipeline: %s: %w", stage, err)
	}

	// weather
	start := r.clock()
	var weather model.Section
	days, err := r.Weather.Forecast(ctx, r.Location)
	switch {
	case err == nil:
		weather = model.Ready(tomorrow.Summary(days))
		r.emit(ctx, res.RunID, trigger, observe.StageWeather, observe.OK, nil, start)
	case model.IsFetchError(err):
		weather = model.Failed(err)
		r.emit(ctx, res.RunID, trigger, observe.StageWeather, observe.Recovered, err, start)
	default:
		return fail(observe.StageWeather, start, err)
	}

	// news, summarized only when the fetch succeeded
	start = r.clock()
	var news model.Section
	topics, err := r.News.Topics(ctx, r.Keywords)
	switch {
	case err == nil:
		r.emit(ctx, res.RunID, trigger, observe.StageNews, observe.OK, nil, start)
		start = r.clock()
		text, err := r.Summarizer.SummarizeNews(ctx, topics)
		if err != nil {
			return fail(observe.StageSummarize, start, err)
		}
		news = model.Ready(text)
		r.emit(ctx, res.RunID, trigger, observe.StageSummarize, observe.OK, nil, start)
	case model.IsFetchError(err):
		news = model.Failed(err)
		r.emit(ctx, res.RunID, trigger, observe.StageNews, observe.Recovered, err, start)
	default:
		return fail(observe.StageNews, start, err)
	}

	start = r.clock()
	d, err := digest.Compose(weather, news)
	if err != nil {
		return fail(observe.StageCompose, start, err)
	}
	res.Digest = d

	// deliver; failures never fail the run
	start = r.clock()
	if err := r.Notifier.Send(ctx, res.Digest); err != nil {
		res.DeliveryErr = err
		lg.Error("pipeline: email delivery failed", "err", err)
		r.emit(ctx, res.RunID, trigger, observe.StageDeliver, observe.Recovered, err, start)
	} else {
		r.emit(ctx, res.RunID, trigger, observe.StageDeliver, observe.OK, nil, start)
	}

	r.emit(ctx, res.RunID, trigger, observe.StageRun, observe.OK, nil, runStart)
	lg.Info("pipeline: run finished", "delivered", res.Delivered(), "weather_ok", weather.OK(), "news_ok", news.OK())
	return res, nil
}

func (r *Runner) emit(ctx context.Context, runID, trigger string, stage observe.Stage, outcome observe.Outcome, err error, start time.Time) {
	if r.Hook == nil {
		return
	}
	now := r.clock()
	e := observe.Event{
		RunID:    runID,
		Trigger:  trigger,
		Stage:    stage,
		Outcome:  outcome,
		Duration: now.Sub(start),
		At:       now,
	}
	if err != nil {
		e.Error = err.Error()
	}
	r.Hook.Observe(ctx, e)
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *Runner) id() string {
	if r.newID != nil {
		return r.newID()
	}
	return uuid.NewString()
}
