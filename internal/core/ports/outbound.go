package ports

import (
	"context"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// BatchRepository persists batch metadata, move plans and their results.
type BatchRepository interface {
	CreateBatch(ctx context.Context, record *domain.BatchRecord) error
	UpdateBatch(ctx context.Context, record *domain.BatchRecord) error
	GetBatch(ctx context.Context, id string) (*domain.BatchRecord, error)

	CreatePlan(ctx context.Context, plan *domain.MovePlan) error
	GetPlan(ctx context.Context, planID string) (*domain.MovePlan, error)
	UpdatePlanStatus(ctx context.Context, planID string, status domain.PlanStatus) error
	SaveOperationResult(ctx context.Context, planID string, result domain.OperationResult) error
	GetPlanResultByBatch(ctx context.Context, batchID string) (*domain.PlanResult, error)
}

// PlanQueue publishes/consumes plan submission events.
type PlanQueue interface {
	PublishPlanSubmitted(ctx context.Context, planID string) error
	SubscribePlanSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}

// FileMover executes one planned move with a conflict strategy, returning
// the file name that actually landed at the destination.
type FileMover interface {
	Move(ctx context.Context, op domain.ProcessingOperation, strategy domain.ConflictStrategy) (string, error)
}

// PathExpander enumerates real files under absolute root paths supplied by
// a host shell integration.
type PathExpander interface {
	Expand(ctx context.Context, roots []string) ([]domain.FileDescriptor, error)
}

// UnitRegistry resolves client units and their destination base paths.
type UnitRegistry interface {
	UnitBasePath(ctx context.Context, unitID string) (string, error)
	UpsertCompany(ctx context.Context, company *domain.Company) error
	UpsertUnit(ctx context.Context, unit *domain.Unit) error
}
