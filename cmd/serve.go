package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"daily-digest/internal/observe"
	"daily-digest/internal/server"
	"daily-digest/worker"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run-script trigger endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		readTO, err := time.ParseDuration(cfg.Server.ReadTimeout)
		if err != nil {
			return fmt.Errorf("invalid server.read_timeout: %w", err)
		}
		writeTO, err := time.ParseDuration(cfg.Server.WriteTimeout)
		if err != nil {
			return fmt.Errorf("invalid server.write_timeout: %w", err)
		}
		gin.SetMode(cfg.Server.GinMode)

		metrics := observe.NewMetrics()
		runner, cleanup := newRunner(cfg, newSMTP(cfg), metrics)
		defer cleanup()

		router := server.NewRouter(server.NewHandler(runner, cfg.Auth.RunToken), metrics.Handler())
		ws := []worker.Worker{&worker.HTTPServer{Server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  readTO,
			WriteTimeout: writeTO,
		}}}

		if strings.TrimSpace(cfg.Schedule.Interval) != "" {
			interval, err := time.ParseDuration(cfg.Schedule.Interval)
			if err != nil {
				return err
			}
			slog.Info("starting scheduler", "interval", interval)
			ws = append(ws, &worker.Scheduler{Runner: runner, Interval: interval})
		}

		// Signal handling for systemd
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return worker.NewManager(ws...).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
