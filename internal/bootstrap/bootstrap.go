package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmenergia/document-organizer/internal/config"
	"github.com/bmenergia/document-organizer/internal/core/classify"
	"github.com/bmenergia/document-organizer/internal/core/ingest"
	"github.com/bmenergia/document-organizer/internal/core/ports"
	"github.com/bmenergia/document-organizer/internal/core/usecase"
	"github.com/bmenergia/document-organizer/internal/infrastructure/fswalk"
	"github.com/bmenergia/document-organizer/internal/infrastructure/mover/localfs"
	"github.com/bmenergia/document-organizer/internal/infrastructure/queue/nats"
	"github.com/bmenergia/document-organizer/internal/infrastructure/repository/postgres"
	"github.com/bmenergia/document-organizer/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    ports.PlanQueue
	Repo     ports.BatchRepository
	Registry ports.UnitRegistry

	BatchService *usecase.BatchService
	ExecutorUC   ports.PlanExecutor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewBatchRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure batch schema: %w", err)
	}
	registry := postgres.NewUnitRepository(db, cfg.UnitBaseDir)
	if err := registry.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure registry schema: %w", err)
	}

	retryBackoff := time.Duration(cfg.RetryBackoffMillis) * time.Millisecond
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: retryBackoff,
		RetryMaxBackoff:     4 * retryBackoff,
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
	}, logger)
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init plan queue: %w", err)
	}

	patterns, err := ingest.LoadExclusionPatterns(cfg.ExclusionConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load exclusion patterns: %w", err)
	}
	filter, err := ingest.NewExclusionFilter(patterns)
	if err != nil {
		return nil, fmt.Errorf("compile exclusion patterns: %w", err)
	}

	ingestor := ingest.NewIngestor(fswalk.New(), filter)
	classifier := classify.NewClassifier(nil)

	batchService := usecase.NewBatchService(
		ingestor,
		classifier,
		repo,
		registry,
		queue,
		logger,
		cfg.ClassifyWorkers,
	)
	executorUC := usecase.NewExecutePlanUseCase(repo, localfs.NewMover(), executor, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Queue:    queue,
		Repo:     repo,
		Registry: registry,

		BatchService: batchService,
		ExecutorUC:   executorUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
