package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *BatchRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026031001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	base_path TEXT NOT NULL,
	date_mode TEXT NOT NULL,
	status TEXT NOT NULL,
	total_files INTEGER NOT NULL DEFAULT 0,
	excluded_files INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS move_plans (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	strategy TEXT NOT NULL,
	status TEXT NOT NULL,
	operations JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS move_operations (
	plan_id TEXT NOT NULL REFERENCES move_plans(id),
	op_index INTEGER NOT NULL,
	original_name TEXT NOT NULL,
	final_name TEXT,
	source_path TEXT NOT NULL,
	target_path TEXT NOT NULL,
	succeeded BOOLEAN NOT NULL,
	error_message TEXT,
	recorded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (plan_id, op_index)
);

CREATE INDEX IF NOT EXISTS idx_move_plans_batch_id ON move_plans(batch_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *BatchRepository) CreateBatch(ctx context.Context, record *domain.BatchRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO batches (id, base_path, date_mode, status, total_files, excluded_files, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		record.ID, record.BasePath, string(record.DateMode), string(record.Status),
		record.TotalFiles, record.ExcludedFiles, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) UpdateBatch(ctx context.Context, record *domain.BatchRecord) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE batches
SET base_path = $2, date_mode = $3, status = $4, total_files = $5, excluded_files = $6, updated_at = $7
WHERE id = $1
`,
		record.ID, record.BasePath, string(record.DateMode), string(record.Status),
		record.TotalFiles, record.ExcludedFiles, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update batch rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "update batch", fmt.Errorf("no batch %s", record.ID))
	}
	return nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, id string) (*domain.BatchRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, base_path, date_mode, status, total_files, excluded_files, created_at, updated_at
FROM batches
WHERE id = $1
`, id)

	var record domain.BatchRecord
	var dateMode, status string
	err := row.Scan(
		&record.ID, &record.BasePath, &dateMode, &status,
		&record.TotalFiles, &record.ExcludedFiles, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("no batch %s", id))
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	record.DateMode = domain.DateMode(dateMode)
	record.Status = domain.BatchStatus(status)
	return &record, nil
}

func (r *BatchRepository) CreatePlan(ctx context.Context, plan *domain.MovePlan) error {
	opsJSON, err := json.Marshal(plan.Operations)
	if err != nil {
		return fmt.Errorf("marshal operations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO move_plans (id, batch_id, strategy, status, operations, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		plan.ID, plan.BatchID, string(plan.Strategy), string(plan.Status), opsJSON, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetPlan(ctx context.Context, planID string) (*domain.MovePlan, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, batch_id, strategy, status, operations, created_at, updated_at
FROM move_plans
WHERE id = $1
`, planID)

	var plan domain.MovePlan
	var strategy, status string
	var opsRaw []byte
	err := row.Scan(&plan.ID, &plan.BatchID, &strategy, &status, &opsRaw, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPlanNotFound, "get plan", fmt.Errorf("no plan %s", planID))
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	if err := json.Unmarshal(opsRaw, &plan.Operations); err != nil {
		return nil, fmt.Errorf("unmarshal operations: %w", err)
	}
	plan.Strategy = domain.ConflictStrategy(strategy)
	plan.Status = domain.PlanStatus(status)
	return &plan, nil
}

func (r *BatchRepository) UpdatePlanStatus(ctx context.Context, planID string, status domain.PlanStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE move_plans
SET status = $2, updated_at = $3
WHERE id = $1
`, planID, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update plan status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update plan rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrPlanNotFound, "update plan status", fmt.Errorf("no plan %s", planID))
	}
	return nil
}

func (r *BatchRepository) SaveOperationResult(ctx context.Context, planID string, result domain.OperationResult) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO move_operations (plan_id, op_index, original_name, final_name, source_path, target_path, succeeded, error_message, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (plan_id, op_index) DO UPDATE
SET final_name = EXCLUDED.final_name, succeeded = EXCLUDED.succeeded, error_message = EXCLUDED.error_message, recorded_at = EXCLUDED.recorded_at
`,
		planID, result.Index, result.OriginalName, result.FinalName,
		result.SourcePath, result.TargetPath, result.Succeeded, result.Error, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert operation result: %w", err)
	}
	return nil
}

// GetPlanResultByBatch summarizes the most recent plan of a batch.
func (r *BatchRepository) GetPlanResultByBatch(ctx context.Context, batchID string) (*domain.PlanResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id
FROM move_plans
WHERE batch_id = $1
ORDER BY created_at DESC
LIMIT 1
`, batchID)

	var planID string
	if err := row.Scan(&planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrPlanNotFound, "get plan result", fmt.Errorf("no plan for batch %s", batchID))
		}
		return nil, fmt.Errorf("scan plan id: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT op_index, original_name, final_name, source_path, target_path, succeeded, error_message
FROM move_operations
WHERE plan_id = $1
ORDER BY op_index
`, planID)
	if err != nil {
		return nil, fmt.Errorf("query operation results: %w", err)
	}
	defer rows.Close()

	result := &domain.PlanResult{PlanID: planID}
	for rows.Next() {
		var op domain.OperationResult
		var finalName, errMessage sql.NullString
		if err := rows.Scan(&op.Index, &op.OriginalName, &finalName, &op.SourcePath, &op.TargetPath, &op.Succeeded, &errMessage); err != nil {
			return nil, fmt.Errorf("scan operation result: %w", err)
		}
		op.FinalName = finalName.String
		op.Error = errMessage.String

		result.Total++
		if op.Succeeded {
			result.Succeeded++
		} else {
			result.Failed = append(result.Failed, op)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation results: %w", err)
	}
	return result, nil
}
