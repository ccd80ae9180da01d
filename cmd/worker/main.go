package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/kirillkom/order-insights/internal/bootstrap"
	"github.com/kirillkom/order-insights/internal/config"
	"github.com/kirillkom/order-insights/internal/core/domain"
	"github.com/kirillkom/order-insights/internal/observability/logging"
	"github.com/kirillkom/order-insights/internal/observability/metrics"
)

const syncTimeout = 15 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	runSync := func(handlerCtx context.Context, runID string, filter domain.OrderFilter) error {
		syncCtx, cancel := context.WithTimeout(handlerCtx, syncTimeout)
		defer cancel()

		workerMetrics.StartSync()
		start := time.Now()
		report, err := app.SyncUC.Sync(syncCtx, runID, filter)
		workerMetrics.FinishSync("worker", time.Since(start), err)
		if err != nil {
			return err
		}

		workerMetrics.ObserveCustomers("worker", report.Updated, report.Created)
		slog.Info("sync completed",
			"run_id", report.RunID,
			"processed", len(report.Processed),
			"updated", report.Updated,
			"created", report.Created,
			"duration_ms", float64(report.CompletedAt.Sub(report.StartedAt).Microseconds())/1000.0,
		)
		return nil
	}

	scheduledFilter := domain.OrderFilter{
		Status:    domain.OrderStatus(cfg.SyncStatus),
		Limit:     cfg.SyncLimit,
		MinOrders: cfg.SyncMinOrders,
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() {
		runID := uuid.NewString()
		slog.Info("scheduled sync starting", "run_id", runID)
		if err := runSync(ctx, runID, scheduledFilter); err != nil {
			slog.Error("scheduled sync failed", "run_id", runID, "error", err)
		}
	}); err != nil {
		log.Fatalf("invalid sync schedule %q: %v", cfg.SyncSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject, "schedule", cfg.SyncSchedule)
	if err := app.Queue.SubscribeSyncRequested(ctx, runSync); err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
