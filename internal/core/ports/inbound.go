package ports

import (
	"context"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// AnalyzeRequest is the inbound payload for batch analysis. Either UnitID
// (resolved through the registry) or an explicit BasePath selects the
// destination tree.
type AnalyzeRequest struct {
	BatchID  string
	UnitID   string
	BasePath string
	DateMode domain.DateMode
	Event    domain.DropEvent
}

// BatchAnalyzer is the inbound contract for ingestion + classification.
type BatchAnalyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*domain.BatchSnapshot, error)
	Snapshot(ctx context.Context, batchID string) (*domain.BatchSnapshot, error)
}

// BatchEditor is the inbound contract for manual batch edits.
type BatchEditor interface {
	MoveToManual(ctx context.Context, batchID, relativePath string) (*domain.BatchSnapshot, error)
	AssignFolder(ctx context.Context, batchID string, relativePaths []string, folderID string) (*domain.BatchSnapshot, error)
	Rename(ctx context.Context, batchID, relativePath, newName string) (*domain.BatchSnapshot, error)
	Remove(ctx context.Context, batchID, relativePath string) (*domain.BatchSnapshot, error)
}

// BatchProcessor compiles and submits the move plan and reads its result.
type BatchProcessor interface {
	Process(ctx context.Context, batchID string, strategy domain.ConflictStrategy) (*domain.MovePlan, []string, error)
	Result(ctx context.Context, batchID string) (*domain.PlanResult, error)
}

// PlanExecutor is the inbound contract for asynchronous plan execution.
type PlanExecutor interface {
	ExecutePlan(ctx context.Context, planID string) error
}
