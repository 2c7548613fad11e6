package worker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"daily-digest/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingWorker struct{ stopped atomic.Bool }

func (w *blockingWorker) Start(ctx context.Context) error {
	<-ctx.Done()
	w.stopped.Store(true)
	return nil
}

type failingWorker struct{ err error }

func (w failingWorker) Start(context.Context) error { return w.err }

func TestManagerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &blockingWorker{}
	done := make(chan error, 1)
	go func() { done <- NewManager(w).Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop")
	}
	assert.True(t, w.stopped.Load())
}

func TestManagerFailingWorkerCancelsOthers(t *testing.T) {
	boom := errors.New("listen: address in use")
	other := &blockingWorker{}

	err := NewManager(other, failingWorker{err: boom}).Start(context.Background())

	require.ErrorIs(t, err, boom)
	assert.True(t, other.stopped.Load())
}

type countingRunner struct{ n atomic.Int32 }

func (r *countingRunner) Run(context.Context, string) (pipeline.Result, error) {
	r.n.Add(1)
	return pipeline.Result{RunID: "r"}, nil
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = (&Scheduler{Runner: runner, Interval: 10 * time.Millisecond}).Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.n.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestHTTPServerShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	srv := &http.Server{Addr: addr, Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- (&HTTPServer{Server: srv}).Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestHTTPServerListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = (&HTTPServer{Server: &http.Server{Addr: ln.Addr().String()}}).Start(context.Background())
	require.Error(t, err)
}
