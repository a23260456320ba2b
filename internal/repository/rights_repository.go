package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// RightsRepository reads and grants per-user right bitmasks.
type RightsRepository interface {
	Get(ctx context.Context, userID int64, name string) (domain.Right, error)
	Grant(ctx context.Context, userID int64, name string, rights domain.Right) error
}

type rightsRepository struct {
	pool *pgxpool.Pool
}

// NewRightsRepository builds repository.
func NewRightsRepository(pool *pgxpool.Pool) RightsRepository {
	return &rightsRepository{pool: pool}
}

// Get returns zero rights when nothing was granted.
func (r *rightsRepository) Get(ctx context.Context, userID int64, name string) (domain.Right, error) {
	const query = `SELECT rights FROM user_rights WHERE user_id=$1 AND right_name=$2`
	var rights domain.Right
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(&rights)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return rights, err
}

// Grant replaces the bitmask of name for userID.
func (r *rightsRepository) Grant(ctx context.Context, userID int64, name string, rights domain.Right) error {
	const query = `
        INSERT INTO user_rights (user_id, right_name, rights) VALUES ($1,$2,$3)
        ON CONFLICT (user_id, right_name) DO UPDATE SET rights=EXCLUDED.rights`
	_, err := r.pool.Exec(ctx, query, userID, name, rights)
	return err
}
