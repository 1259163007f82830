package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bmenergia/document-organizer/internal/core/domain"
	"github.com/bmenergia/document-organizer/internal/core/ports"
	"github.com/bmenergia/document-organizer/internal/infrastructure/resilience"
)

// ExecutePlanUseCase runs a submitted move plan operation by operation.
// One failing move never aborts the plan; every operation gets a recorded
// verdict and the plan completes with a per-operation result set.
type ExecutePlanUseCase struct {
	repo     ports.BatchRepository
	mover    ports.FileMover
	executor *resilience.Executor
	logger   *slog.Logger
}

func NewExecutePlanUseCase(
	repo ports.BatchRepository,
	mover ports.FileMover,
	executor *resilience.Executor,
	logger *slog.Logger,
) *ExecutePlanUseCase {
	return &ExecutePlanUseCase{
		repo:     repo,
		mover:    mover,
		executor: executor,
		logger:   logger,
	}
}

func (uc *ExecutePlanUseCase) ExecutePlan(ctx context.Context, planID string) error {
	plan, err := uc.repo.GetPlan(ctx, planID)
	if err != nil {
		return fmt.Errorf("fetch plan by id: %w", err)
	}
	if plan.Status == domain.PlanCompleted {
		uc.logger.Info("plan already completed", "plan_id", planID)
		return nil
	}

	if err := uc.repo.UpdatePlanStatus(ctx, planID, domain.PlanRunning); err != nil {
		return fmt.Errorf("set plan status=running: %w", err)
	}

	succeeded := 0
	for i, op := range plan.Operations {
		result := uc.executeOperation(ctx, plan, i, op)
		if result.Succeeded {
			succeeded++
		}
		if err := uc.repo.SaveOperationResult(ctx, planID, result); err != nil {
			return fmt.Errorf("save operation result %d: %w", i, err)
		}
	}

	if err := uc.repo.UpdatePlanStatus(ctx, planID, domain.PlanCompleted); err != nil {
		return fmt.Errorf("set plan status=completed: %w", err)
	}

	uc.logger.Info("plan executed",
		"plan_id", planID,
		"total", len(plan.Operations),
		"succeeded", succeeded,
		"failed", len(plan.Operations)-succeeded,
	)
	return nil
}

func (uc *ExecutePlanUseCase) executeOperation(ctx context.Context, plan *domain.MovePlan, index int, op domain.ProcessingOperation) domain.OperationResult {
	result := domain.OperationResult{
		Index:        index,
		OriginalName: op.OriginalName,
		SourcePath:   op.SourcePath,
		TargetPath:   op.TargetPath,
	}

	if op.SourcePath == "" {
		result.Error = "no source path available for this file"
		return result
	}

	var finalName string
	err := uc.executor.Execute(ctx, "move_file", func(ctx context.Context) error {
		var moveErr error
		finalName, moveErr = uc.mover.Move(ctx, op, plan.Strategy)
		return moveErr
	}, moveErrorClassifier)
	if err != nil {
		uc.logger.Warn("move failed",
			"plan_id", plan.ID,
			"index", index,
			"source", op.SourcePath,
			"error", err,
		)
		result.Error = err.Error()
		return result
	}

	result.FinalName = finalName
	result.Succeeded = true
	return result
}

// moveErrorClassifier treats missing sources and permission problems as
// permanent; anything else may be a transient filesystem hiccup.
func moveErrorClassifier(err error) resilience.ErrorClassification {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrExist) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
