package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmenergia/document-organizer/internal/bootstrap"
	"github.com/bmenergia/document-organizer/internal/config"
	"github.com/bmenergia/document-organizer/internal/observability/logging"
	"github.com/bmenergia/document-organizer/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
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
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribePlanSubmitted(ctx, func(handlerCtx context.Context, planID string) error {
		executeCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		plan, planErr := app.Repo.GetPlan(executeCtx, planID)
		if planErr == nil {
			workerMetrics.ObserveQueueLag(time.Since(plan.CreatedAt))
		}

		workerMetrics.StartPlan()
		start := time.Now()
		execErr := app.ExecutorUC.ExecutePlan(executeCtx, planID)
		workerMetrics.FinishPlan(time.Since(start), execErr)

		if planErr == nil {
			if result, err := app.Repo.GetPlanResultByBatch(executeCtx, plan.BatchID); err == nil {
				workerMetrics.RecordMoves(result.Succeeded, result.Total-result.Succeeded)
			}
		}
		return execErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
