package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"daily-digest/internal/observe"

	"github.com/redis/go-redis/v9"
)

// EventStore keeps the most recent pipeline events in a capped Redis list,
// newest first. It is a diagnostic trail only; runs never read it back.
type EventStore struct {
	rdb *redis.Client
	key string
	max int64
}

func NewEventStore(rdb *redis.Client, key string, max int64) *EventStore {
	if key == "" {
		key = "digest:events"
	}
	if max <= 0 {
		max = 200
	}
	return &EventStore{rdb: rdb, key: key, max: max}
}

// Append pushes e and trims the list to the configured length.
func (s *EventStore) Append(ctx context.Context, e observe.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.key, b)
	pipe.LTrim(ctx, s.key, 0, s.max-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to n events, newest first.
func (s *EventStore) Recent(ctx context.Context, n int64) ([]observe.Event, error) {
	if n <= 0 {
		n = s.max
	}
	raw, err := s.rdb.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]observe.Event, 0, len(raw))
	for _, r := range raw {
		var e observe.Event
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			slog.Warn("storage: skipping undecodable event", "key", s.key, "err", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Observe implements observe.Hook. Write failures are logged and dropped so a
// Redis outage never affects a run.
func (s *EventStore) Observe(ctx context.Context, e observe.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Append(ctx, e); err != nil {
		slog.Warn("storage: record event failed", "stage", string(e.Stage), "err", err)
	}
}
