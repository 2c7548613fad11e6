package cmd

import (
	"log/slog"

	"daily-digest/internal/ai"
	"daily-digest/internal/config"
	"daily-digest/internal/mailer"
	"daily-digest/internal/newsdata"
	"daily-digest/internal/observe"
	"daily-digest/internal/pipeline"
	"daily-digest/internal/redisclient"
	"daily-digest/internal/storage"
	"daily-digest/internal/tomorrow"
)

// newSMTP builds the production notifier from configuration.
func newSMTP(cfg config.Config) *mailer.SMTPSender {
	return mailer.NewSMTP(mailer.Config{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Sender:    cfg.Mail.Sender,
		Password:  cfg.Mail.Password,
		Recipient: cfg.Mail.Recipient,
		Timeout:   cfg.HTTPTimeout(),
	})
}

// newRunner wires the pipeline. Events always go to slog; extra hooks and,
// when redis.addr is set, the Redis event trail are appended. The returned
// func releases the Redis connection.
func newRunner(cfg config.Config, notifier pipeline.Notifier, extra ...observe.Hook) (*pipeline.Runner, func()) {
	timeout := cfg.HTTPTimeout()
	hooks := observe.Multi{observe.Logger{}}
	hooks = append(hooks, extra...)

	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		rdb := redisclient.New(cfg.Redis)
		hooks = append(hooks, storage.NewEventStore(rdb, cfg.Redis.EventsKey, cfg.Redis.MaxEvents))
		cleanup = func() { _ = rdb.Close() }
		slog.Info("wire: recording pipeline events in redis", "addr", cfg.Redis.Addr, "key", cfg.Redis.EventsKey)
	}

	r := &pipeline.Runner{
		Weather:    tomorrow.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, timeout),
		News:       newsdata.NewClient(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.Language, timeout),
		Summarizer: ai.NewOpenAI(ai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.OpenAITimeout(),
		}),
		Notifier:   notifier,
		Hook:       hooks,
		Location:   cfg.Location(),
		Keywords:   cfg.News.Keywords,
	}
	return r, cleanup
}
