package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bmenergia/document-organizer/internal/core/batch"
	"github.com/bmenergia/document-organizer/internal/core/classify"
	"github.com/bmenergia/document-organizer/internal/core/domain"
	"github.com/bmenergia/document-organizer/internal/core/ingest"
	"github.com/bmenergia/document-organizer/internal/core/ports"
)

// BatchService drives the batch lifecycle: ingestion, classification,
// manual edits and plan submission. Live batch state is held in-memory per
// batch; the repository keeps the durable metadata and plan history.
type BatchService struct {
	ingestor   *ingest.Ingestor
	classifier *classify.Classifier
	repo       ports.BatchRepository
	registry   ports.UnitRegistry
	queue      ports.PlanQueue
	logger     *slog.Logger
	workers    int

	mu       sync.Mutex
	sessions map[string]*batch.Orchestrator
}

func NewBatchService(
	ingestor *ingest.Ingestor,
	classifier *classify.Classifier,
	repo ports.BatchRepository,
	registry ports.UnitRegistry,
	queue ports.PlanQueue,
	logger *slog.Logger,
	workers int,
) *BatchService {
	if workers < 1 {
		workers = 1
	}
	return &BatchService{
		ingestor:   ingestor,
		classifier: classifier,
		repo:       repo,
		registry:   registry,
		queue:      queue,
		logger:     logger,
		workers:    workers,
		sessions:   make(map[string]*batch.Orchestrator),
	}
}

// Analyze ingests a drop event, classifies every file and installs the
// result as the batch's current state. Re-analyzing an existing batch
// supersedes any analysis still in flight for it.
func (s *BatchService) Analyze(ctx context.Context, req ports.AnalyzeRequest) (*domain.BatchSnapshot, error) {
	basePath, err := s.resolveBasePath(ctx, req)
	if err != nil {
		return nil, err
	}
	mode := req.DateMode
	if mode == "" {
		mode = domain.DateModeModification
	}

	o, created := s.session(req.BatchID, basePath, mode)
	seq := o.BeginAnalysis()

	descriptors, stats, err := s.ingestor.Ingest(ctx, req.Event)
	if err != nil {
		return nil, err
	}

	files := s.classifyAll(descriptors, mode)
	if !o.CompleteAnalysis(seq, files, stats.Excluded) {
		s.logger.Info("discarding superseded analysis", "batch_id", o.ID(), "seq", seq)
		return o.Snapshot(), nil
	}

	snap := o.Snapshot()
	if err := s.persist(ctx, snap, created); err != nil {
		return nil, err
	}

	s.logger.Info("batch analyzed",
		"batch_id", snap.ID,
		"files", snap.TotalFiles,
		"excluded", snap.ExcludedFiles,
		"auto", len(snap.Auto),
		"manual", len(snap.Manual),
	)
	return snap, nil
}

func (s *BatchService) Snapshot(_ context.Context, batchID string) (*domain.BatchSnapshot, error) {
	o, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	return o.Snapshot(), nil
}

func (s *BatchService) MoveToManual(ctx context.Context, batchID, relativePath string) (*domain.BatchSnapshot, error) {
	return s.edit(ctx, batchID, func(o *batch.Orchestrator) error {
		return o.MoveToManual(relativePath)
	})
}

func (s *BatchService) AssignFolder(ctx context.Context, batchID string, relativePaths []string, folderID string) (*domain.BatchSnapshot, error) {
	return s.edit(ctx, batchID, func(o *batch.Orchestrator) error {
		return o.AssignFolder(relativePaths, folderID)
	})
}

func (s *BatchService) Rename(ctx context.Context, batchID, relativePath, newName string) (*domain.BatchSnapshot, error) {
	return s.edit(ctx, batchID, func(o *batch.Orchestrator) error {
		return o.Rename(relativePath, newName)
	})
}

func (s *BatchService) Remove(ctx context.Context, batchID, relativePath string) (*domain.BatchSnapshot, error) {
	return s.edit(ctx, batchID, func(o *batch.Orchestrator) error {
		return o.Remove(relativePath)
	})
}

// Process compiles the move plan, persists it and hands it to the worker
// queue. The batch must be fully assigned first.
func (s *BatchService) Process(ctx context.Context, batchID string, strategy domain.ConflictStrategy) (*domain.MovePlan, []string, error) {
	o, err := s.lookup(batchID)
	if err != nil {
		return nil, nil, err
	}
	if err := o.Finalizable(); err != nil {
		return nil, nil, err
	}

	ops, warnings := batch.Compile(o.BasePath(), o.Files())
	if len(ops) == 0 {
		return nil, warnings, domain.WrapError(domain.ErrEmptyBatch, "process batch", errors.New("no executable operations"))
	}

	now := time.Now().UTC()
	plan := &domain.MovePlan{
		ID:         uuid.NewString(),
		BatchID:    batchID,
		Strategy:   strategy,
		Status:     domain.PlanSubmitted,
		Operations: ops,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, warnings, fmt.Errorf("persist move plan: %w", err)
	}
	if err := s.queue.PublishPlanSubmitted(ctx, plan.ID); err != nil {
		return nil, warnings, fmt.Errorf("publish plan submission: %w", err)
	}

	o.SetStatus(domain.BatchSubmitted)
	if err := s.persist(ctx, o.Snapshot(), false); err != nil {
		return nil, warnings, err
	}

	s.logger.Info("move plan submitted",
		"batch_id", batchID,
		"plan_id", plan.ID,
		"operations", len(ops),
		"warnings", len(warnings),
	)
	return plan, warnings, nil
}

func (s *BatchService) Result(ctx context.Context, batchID string) (*domain.PlanResult, error) {
	result, err := s.repo.GetPlanResultByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("fetch plan result: %w", err)
	}
	return result, nil
}

func (s *BatchService) resolveBasePath(ctx context.Context, req ports.AnalyzeRequest) (string, error) {
	if req.UnitID != "" {
		basePath, err := s.registry.UnitBasePath(ctx, req.UnitID)
		if err != nil {
			return "", fmt.Errorf("resolve unit base path: %w", err)
		}
		return basePath, nil
	}
	if req.BasePath != "" {
		return req.BasePath, nil
	}
	return "", domain.WrapError(domain.ErrInvalidInput, "analyze batch", errors.New("neither unit id nor base path given"))
}

// classifyAll fans classification out over a bounded worker pool. Results
// land at their input index, so ingestion order is preserved.
func (s *BatchService) classifyAll(descriptors []domain.FileDescriptor, mode domain.DateMode) []domain.ManagedFile {
	files := make([]domain.ManagedFile, len(descriptors))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, d := range descriptors {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, d domain.FileDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()
			files[i] = s.buildManaged(d, mode)
		}(i, d)
	}
	wg.Wait()
	return files
}

func (s *BatchService) buildManaged(d domain.FileDescriptor, mode domain.DateMode) domain.ManagedFile {
	file := domain.ManagedFile{
		FileDescriptor: d,
		ModePeriod:     classify.ResolvePeriod(d, mode),
	}

	// Files dropped from a unit's own numbered source folder keep their
	// names and route straight to the matching destination.
	if folderID, routed := ingest.RouteBySourceFolder(d.RelativePath); routed {
		file.Partition = domain.PartitionManual
		file.AssignedFolder = folderID
		return file
	}

	file.Classification = s.classifier.Classify(d)
	if file.Classification.DocumentType == "" {
		file.Partition = domain.PartitionManual
		file.AssignedFolder = domain.MiscellanyFolderID
		return file
	}
	file.Partition = domain.PartitionAuto
	return file
}

func (s *BatchService) session(batchID, basePath string, mode domain.DateMode) (*batch.Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if batchID != "" {
		if o, ok := s.sessions[batchID]; ok {
			return o, false
		}
	}
	if batchID == "" {
		batchID = uuid.NewString()
	}
	o := batch.NewOrchestrator(batchID, basePath, mode)
	s.sessions[batchID] = o
	return o, true
}

func (s *BatchService) lookup(batchID string) (*batch.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.sessions[batchID]
	if !ok {
		return nil, domain.WrapError(domain.ErrBatchNotFound, "lookup batch", fmt.Errorf("no batch %q", batchID))
	}
	return o, nil
}

func (s *BatchService) edit(ctx context.Context, batchID string, mutate func(*batch.Orchestrator) error) (*domain.BatchSnapshot, error) {
	o, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	if err := mutate(o); err != nil {
		return nil, err
	}
	snap := o.Snapshot()
	if err := s.persist(ctx, snap, false); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *BatchService) persist(ctx context.Context, snap *domain.BatchSnapshot, created bool) error {
	record := &domain.BatchRecord{
		ID:            snap.ID,
		BasePath:      snap.BasePath,
		DateMode:      snap.DateMode,
		Status:        snap.Status,
		TotalFiles:    snap.TotalFiles,
		ExcludedFiles: snap.ExcludedFiles,
		UpdatedAt:     time.Now().UTC(),
	}
	if created {
		record.CreatedAt = record.UpdatedAt
		if err := s.repo.CreateBatch(ctx, record); err != nil {
			return fmt.Errorf("persist batch metadata: %w", err)
		}
		return nil
	}
	if err := s.repo.UpdateBatch(ctx, record); err != nil {
		return fmt.Errorf("update batch metadata: %w", err)
	}
	return nil
}
