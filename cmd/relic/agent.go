package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/app"
	"github.com/relicbackup/relic/internal/logger"
	"github.com/relicbackup/relic/internal/metrics"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run scheduled backups and serve metrics",
	RunE:  runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Agent.Schedule == "" {
		return fmt.Errorf("agent.schedule is required in agent mode")
	}

	log := logger.Must(debug, cfg.LogPath)
	defer log.Sync()

	tr, err := buildTransport(cfg, log)
	if err != nil {
		return err
	}
	notif, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	application := app.New(cfg, log, tr, notif, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Overlapping runs against the same backup dir and remote are
	// unsafe, so a tick that fires while a run is in flight is skipped.
	var running atomic.Bool
	sched := cron.New()
	_, err = sched.AddFunc(cfg.Agent.Schedule, func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous run still in progress, skipping tick")
			return
		}
		defer running.Store(false)
		if _, err := application.Run(ctx); err != nil {
			log.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("installing schedule: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: cfg.Agent.MetricsAddr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	sched.Start()
	log.Info("agent started",
		zap.String("schedule", cfg.Agent.Schedule),
		zap.String("metrics_addr", cfg.Agent.MetricsAddr))

	<-ctx.Done()
	log.Info("shutting down agent")

	// Wait for any in-flight job to return; its context is already
	// canceled, so this is bounded
	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return nil
}
