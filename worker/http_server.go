package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HTTPServer serves Server until ctx is cancelled, then shuts it down
// gracefully.
type HTTPServer struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
}

func (w *HTTPServer) Start(ctx context.Context) error {
	if w.ShutdownTimeout <= 0 {
		w.ShutdownTimeout = 5 * time.Second
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("http: listening", "addr", w.Server.Addr)
		if err := w.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("http: shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), w.ShutdownTimeout)
	defer cancel()
	if err := w.Server.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}
