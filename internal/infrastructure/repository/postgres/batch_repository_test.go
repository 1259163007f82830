package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

func newBatchRepoWithMock(t *testing.T) (*BatchRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &BatchRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetBatchReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, base_path, date_mode, status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBatch(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateBatchReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE batches").
		WithArgs("missing", "/base", "mod", "ready", 0, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateBatch(context.Background(), &domain.BatchRecord{
		ID:       "missing",
		BasePath: "/base",
		DateMode: domain.DateModeModification,
		Status:   domain.BatchReady,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetPlanRoundTripsOperations(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	opsJSON := `[{"original_name":"2024-03.pdf","new_name":"FAT-2024-03.pdf","source_path":"/in/2024-03.pdf","target_path":"/out/02 Faturas/FAT-2024-03.pdf"}]`
	rows := sqlmock.NewRows([]string{"id", "batch_id", "strategy", "status", "operations", "created_at", "updated_at"}).
		AddRow("plan-1", "batch-1", "version", "submitted", []byte(opsJSON), now, now)

	mock.ExpectQuery("SELECT id, batch_id, strategy, status, operations").
		WithArgs("plan-1").
		WillReturnRows(rows)

	plan, err := repo.GetPlan(context.Background(), "plan-1")
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	if plan.Strategy != domain.ConflictVersion || plan.Status != domain.PlanSubmitted {
		t.Fatalf("unexpected plan metadata: %+v", plan)
	}
	if len(plan.Operations) != 1 || plan.Operations[0].NewName != "FAT-2024-03.pdf" {
		t.Fatalf("operations lost in round trip: %+v", plan.Operations)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdatePlanStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE move_plans").
		WithArgs("missing", "running", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePlanStatus(context.Background(), "missing", domain.PlanRunning)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetPlanResultByBatchSummarizes(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id\nFROM move_plans").
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("plan-1"))

	opRows := sqlmock.NewRows([]string{"op_index", "original_name", "final_name", "source_path", "target_path", "succeeded", "error_message"}).
		AddRow(0, "2024-03.pdf", "FAT-2024-03.pdf", "/in/2024-03.pdf", "/out/FAT-2024-03.pdf", true, nil).
		AddRow(1, "quebrado.pdf", nil, "/in/quebrado.pdf", "/out/quebrado.pdf", false, "source missing")
	mock.ExpectQuery("SELECT op_index, original_name, final_name").
		WithArgs("plan-1").
		WillReturnRows(opRows)

	result, err := repo.GetPlanResultByBatch(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("GetPlanResultByBatch() error = %v", err)
	}
	if result.Total != 2 || result.Succeeded != 1 || len(result.Failed) != 1 {
		t.Fatalf("unexpected summary: %+v", result)
	}
	if result.Failed[0].Error != "source missing" {
		t.Fatalf("failure detail lost: %+v", result.Failed[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetPlanResultByBatchWithoutPlan(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id\nFROM move_plans").
		WithArgs("batch-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetPlanResultByBatch(context.Background(), "batch-1")
	if !domain.IsKind(err, domain.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
