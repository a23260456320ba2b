package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// importConfigRowID is the single configuration row of the import.
const importConfigRowID = 1

// ImportConfigRepository stores the configured defaults of an import run.
type ImportConfigRepository interface {
	Get(ctx context.Context) (*domain.ImportDefaults, error)
	Save(ctx context.Context, defaults domain.ImportDefaults) error
}

type importConfigRepository struct {
	pool *pgxpool.Pool
}

// NewImportConfigRepository builds repository.
func NewImportConfigRepository(pool *pgxpool.Pool) ImportConfigRepository {
	return &importConfigRepository{pool: pool}
}

// Get returns pgx.ErrNoRows when the configuration row is missing.
func (r *importConfigRepository) Get(ctx context.Context) (*domain.ImportDefaults, error) {
	const query = `
        SELECT default_entity, default_category, default_urgency, default_impact, default_priority
        FROM import_configs WHERE id=$1`
	var d domain.ImportDefaults
	if err := r.pool.QueryRow(ctx, query, importConfigRowID).Scan(
		&d.EntityID,
		&d.CategoryID,
		&d.Urgency,
		&d.Impact,
		&d.Priority,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *importConfigRepository) Save(ctx context.Context, d domain.ImportDefaults) error {
	const query = `
        INSERT INTO import_configs (id, default_entity, default_category, default_urgency, default_impact, default_priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET
            default_entity=EXCLUDED.default_entity,
            default_category=EXCLUDED.default_category,
            default_urgency=EXCLUDED.default_urgency,
            default_impact=EXCLUDED.default_impact,
            default_priority=EXCLUDED.default_priority,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		importConfigRowID,
		d.EntityID,
		d.CategoryID,
		d.Urgency,
		d.Impact,
		d.Priority,
	)
	return err
}
