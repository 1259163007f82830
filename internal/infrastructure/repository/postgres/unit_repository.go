package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

// UnitRepository keeps the client companies and their units, and resolves
// the destination base path of a unit's folder tree.
type UnitRepository struct {
	db      *sql.DB
	baseDir string
}

func NewUnitRepository(db *sql.DB, baseDir string) *UnitRepository {
	return &UnitRepository{db: db, baseDir: baseDir}
}

func (r *UnitRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026031002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	external_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS units (
	id TEXT PRIMARY KEY,
	external_id TEXT NOT NULL,
	company_id TEXT NOT NULL REFERENCES companies(id),
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (company_id, external_id)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// UnitBasePath builds "{base}/{company} - {companyExtID}/{unit} - {unitExtID}".
func (r *UnitRepository) UnitBasePath(ctx context.Context, unitID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT c.name, c.external_id, u.name, u.external_id
FROM units u
JOIN companies c ON c.id = u.company_id
WHERE u.id = $1
`, unitID)

	var companyName, companyExt, unitName, unitExt string
	if err := row.Scan(&companyName, &companyExt, &unitName, &unitExt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.WrapError(domain.ErrUnitNotFound, "unit base path", fmt.Errorf("no unit %s", unitID))
		}
		return "", fmt.Errorf("scan unit: %w", err)
	}

	base := strings.TrimRight(strings.ReplaceAll(r.baseDir, "\\", "/"), "/")
	return fmt.Sprintf("%s/%s - %s/%s - %s", base, companyName, companyExt, unitName, unitExt), nil
}

func (r *UnitRepository) UpsertCompany(ctx context.Context, company *domain.Company) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO companies (id, external_id, name, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name
`, company.ID, company.ExternalID, company.Name, company.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}

func (r *UnitRepository) UpsertUnit(ctx context.Context, unit *domain.Unit) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO units (id, external_id, company_id, name, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (company_id, external_id) DO UPDATE SET name = EXCLUDED.name
`, unit.ID, unit.ExternalID, unit.CompanyID, unit.Name, unit.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert unit: %w", err)
	}
	return nil
}
