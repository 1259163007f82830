package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bmenergia/document-organizer/internal/core/classify"
	"github.com/bmenergia/document-organizer/internal/core/domain"
	"github.com/bmenergia/document-organizer/internal/core/ingest"
	"github.com/bmenergia/document-organizer/internal/core/ports"
)

type batchRepoFake struct {
	createdBatch *domain.BatchRecord
	updatedBatch *domain.BatchRecord
	createdPlan  *domain.MovePlan
	planResult   *domain.PlanResult
	planErr      error
}

func (f *batchRepoFake) CreateBatch(_ context.Context, r *domain.BatchRecord) error {
	rec := *r
	f.createdBatch = &rec
	return nil
}

func (f *batchRepoFake) UpdateBatch(_ context.Context, r *domain.BatchRecord) error {
	rec := *r
	f.updatedBatch = &rec
	return nil
}

func (f *batchRepoFake) GetBatch(context.Context, string) (*domain.BatchRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *batchRepoFake) CreatePlan(_ context.Context, p *domain.MovePlan) error {
	if f.planErr != nil {
		return f.planErr
	}
	plan := *p
	f.createdPlan = &plan
	return nil
}

func (f *batchRepoFake) GetPlan(context.Context, string) (*domain.MovePlan, error) {
	return nil, errors.New("not implemented")
}
func (f *batchRepoFake) UpdatePlanStatus(context.Context, string, domain.PlanStatus) error {
	return errors.New("not implemented")
}
func (f *batchRepoFake) SaveOperationResult(context.Context, string, domain.OperationResult) error {
	return errors.New("not implemented")
}

func (f *batchRepoFake) GetPlanResultByBatch(context.Context, string) (*domain.PlanResult, error) {
	if f.planResult == nil {
		return nil, domain.ErrPlanNotFound
	}
	return f.planResult, nil
}

type registryFake struct {
	basePath string
	err      error
}

func (f *registryFake) UnitBasePath(context.Context, string) (string, error) {
	return f.basePath, f.err
}
func (f *registryFake) UpsertCompany(context.Context, *domain.Company) error {
	return errors.New("not implemented")
}
func (f *registryFake) UpsertUnit(context.Context, *domain.Unit) error {
	return errors.New("not implemented")
}

type planQueueFake struct {
	published []string
	err       error
}

func (f *planQueueFake) PublishPlanSubmitted(_ context.Context, planID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, planID)
	return nil
}

func (f *planQueueFake) SubscribePlanSubmitted(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, repo *batchRepoFake, registry *registryFake, queue *planQueueFake) *BatchService {
	t.Helper()
	filter, err := ingest.NewExclusionFilter(nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	now := func() time.Time { return time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC) }
	return NewBatchService(
		ingest.NewIngestor(nil, filter),
		classify.NewClassifier(now),
		repo,
		registry,
		queue,
		discardLogger(),
		2,
	)
}

func dropOf(files ...domain.DroppedFile) domain.DropEvent {
	return domain.DropEvent{Kind: domain.DropFlatFiles, Files: files}
}

func TestAnalyzeClassifiesAndPartitions(t *testing.T) {
	repo := &batchRepoFake{}
	svc := newTestService(t, repo, &registryFake{}, &planQueueFake{})
	mtime := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	snap, err := svc.Analyze(context.Background(), ports.AnalyzeRequest{
		BasePath: "/data/cliente/Acme - 001/Matriz - 001",
		DateMode: domain.DateModeModification,
		Event: dropOf(
			domain.DroppedFile{Name: "2024-03.pdf", RelativePathHint: "2024-03.pdf", LastModified: mtime},
			domain.DroppedFile{Name: "planilha_vendas.xlsx", RelativePathHint: "planilha_vendas.xlsx", LastModified: mtime},
			domain.DroppedFile{Name: "fat antiga.pdf", RelativePathHint: "6_Relatórios/fat antiga.pdf", LastModified: mtime},
		),
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if snap.ID == "" {
		t.Fatalf("expected a generated batch id")
	}
	if len(snap.Auto) != 1 || snap.Auto[0].Classification.DocumentType != "FAT" {
		t.Fatalf("expected the invoice auto-classified, got %+v", snap.Auto)
	}
	if len(snap.Manual) != 1 || snap.Manual[0].Name != "planilha_vendas.xlsx" {
		t.Fatalf("expected the spreadsheet in manual, got %+v", snap.Manual)
	}
	if snap.Manual[0].AssignedFolder != domain.MiscellanyFolderID {
		t.Fatalf("unclassified files default to miscellany, got %q", snap.Manual[0].AssignedFolder)
	}
	if snap.ExcludedFiles != 1 {
		t.Fatalf("expected the reserved-subtree file excluded, got %d", snap.ExcludedFiles)
	}
	if snap.Status != domain.BatchReady {
		t.Fatalf("expected status ready, got %s", snap.Status)
	}
	if repo.createdBatch == nil || repo.createdBatch.TotalFiles != 2 {
		t.Fatalf("expected batch metadata persisted, got %+v", repo.createdBatch)
	}
}

func TestAnalyzeRoutesSourceFolders(t *testing.T) {
	svc := newTestService(t, &batchRepoFake{}, &registryFake{}, &planQueueFake{})
	mtime := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	snap, err := svc.Analyze(context.Background(), ports.AnalyzeRequest{
		BasePath: "/base",
		Event: dropOf(
			domain.DroppedFile{Name: "contrato velho.pdf", RelativePathHint: "1_BM Energia/contrato velho.pdf", LastModified: mtime},
		),
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(snap.Manual) != 1 {
		t.Fatalf("routed files land in manual, got %+v", snap)
	}
	got := snap.Manual[0]
	if got.AssignedFolder != "bm-energia" {
		t.Fatalf("expected bm-energia, got %q", got.AssignedFolder)
	}
	if got.Classification.DocumentType != "" || got.EffectiveName() != "contrato velho.pdf" {
		t.Fatalf("routed files keep their name and carry no type, got %+v", got)
	}
	if snap.Counts["bm-energia"] != 1 {
		t.Fatalf("routed file must be counted, got %v", snap.Counts)
	}
}

func TestAnalyzeResolvesUnitBasePath(t *testing.T) {
	registry := &registryFake{basePath: "/data/cliente/Acme - 001/Matriz - 001"}
	svc := newTestService(t, &batchRepoFake{}, registry, &planQueueFake{})

	snap, err := svc.Analyze(context.Background(), ports.AnalyzeRequest{
		UnitID: "unit-1",
		Event:  dropOf(domain.DroppedFile{Name: "a.pdf"}),
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if snap.BasePath != registry.basePath {
		t.Fatalf("expected registry base path, got %q", snap.BasePath)
	}
}

func TestAnalyzeWithoutDestination(t *testing.T) {
	svc := newTestService(t, &batchRepoFake{}, &registryFake{}, &planQueueFake{})
	_, err := svc.Analyze(context.Background(), ports.AnalyzeRequest{
		Event: dropOf(domain.DroppedFile{Name: "a.pdf"}),
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSnapshotUnknownBatch(t *testing.T) {
	svc := newTestService(t, &batchRepoFake{}, &registryFake{}, &planQueueFake{})
	if _, err := svc.Snapshot(context.Background(), "missing"); !errors.Is(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected batch-not-found, got %v", err)
	}
}

func TestEditFlowAndProcess(t *testing.T) {
	repo := &batchRepoFake{}
	queue := &planQueueFake{}
	svc := newTestService(t, repo, &registryFake{}, queue)
	mtime := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	snap, err := svc.Analyze(context.Background(), ports.AnalyzeRequest{
		BatchID:  "batch-1",
		BasePath: "/base",
		Event: dropOf(
			domain.DroppedFile{Name: "2024-03.pdf", RelativePathHint: "2024-03.pdf", LastModified: mtime},
			domain.DroppedFile{Name: "planilha.xlsx", RelativePathHint: "planilha.xlsx", LastModified: mtime},
		),
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if snap.ID != "batch-1" {
		t.Fatalf("expected the caller-chosen id, got %q", snap.ID)
	}

	snap, err = svc.AssignFolder(context.Background(), "batch-1", []string{"planilha.xlsx"}, "projetos")
	if err != nil {
		t.Fatalf("AssignFolder() error = %v", err)
	}
	if snap.Counts["projetos"] != 1 {
		t.Fatalf("expected assignment counted, got %v", snap.Counts)
	}

	if _, err := svc.Rename(context.Background(), "batch-1", "planilha.xlsx", "projeto-solar.xlsx"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	plan, warnings, err := svc.Process(context.Background(), "batch-1", domain.ConflictVersion)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(plan.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(plan.Operations))
	}
	// Flat drops carry no absolute paths, so every operation is flagged.
	if len(warnings) != 2 {
		t.Fatalf("expected source-path warnings, got %v", warnings)
	}
	if len(queue.published) != 1 || queue.published[0] != plan.ID {
		t.Fatalf("expected the plan queued, got %v", queue.published)
	}
	if repo.createdPlan == nil || repo.createdPlan.Strategy != domain.ConflictVersion {
		t.Fatalf("expected the plan persisted, got %+v", repo.createdPlan)
	}
	if repo.updatedBatch == nil || repo.updatedBatch.Status != domain.BatchSubmitted {
		t.Fatalf("expected batch marked submitted, got %+v", repo.updatedBatch)
	}
}

func TestProcessAllowsDefaultedManualFiles(t *testing.T) {
	svc := newTestService(t, &batchRepoFake{}, &registryFake{}, &planQueueFake{})
	mtime := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Analyze(context.Background(), ports.AnalyzeRequest{
		BatchID:  "batch-1",
		BasePath: "/base",
		Event:    dropOf(domain.DroppedFile{Name: "2024-03.pdf", LastModified: mtime}),
	}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if _, err := svc.MoveToManual(context.Background(), "batch-1", "2024-03.pdf"); err != nil {
		t.Fatalf("MoveToManual() error = %v", err)
	}
	// Moving to manual assigns the miscellany folder by default, so the
	// batch stays processable.
	if _, _, err := svc.Process(context.Background(), "batch-1", domain.ConflictVersion); err != nil {
		t.Fatalf("defaulted manual files keep the batch processable: %v", err)
	}
}

func TestResultDelegatesToRepository(t *testing.T) {
	repo := &batchRepoFake{planResult: &domain.PlanResult{PlanID: "plan-1", Total: 3, Succeeded: 3}}
	svc := newTestService(t, repo, &registryFake{}, &planQueueFake{})

	result, err := svc.Result(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if result.PlanID != "plan-1" || result.Succeeded != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
}
