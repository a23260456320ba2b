package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByName(ctx context.Context, name string) ([]int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, login, realname, firstname, email, password_hash, entity_id, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (login, realname, firstname, email, password_hash, entity_id, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Login,
		user.RealName,
		user.FirstName,
		user.Email,
		user.PasswordHash,
		user.EntityID,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE login=$1`, login)
}

// FindByName matches a user by login, real name, first name or email, in
// id order.
func (r *userRepository) FindByName(ctx context.Context, name string) ([]int64, error) {
	const query = `
        SELECT id FROM users
        WHERE login=$1 OR realname=$1 OR firstname=$1 OR email=$1
        ORDER BY id`
	return collectIDs(ctx, r.pool, query, name)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Login,
		&user.RealName,
		&user.FirstName,
		&user.Email,
		&user.PasswordHash,
		&user.EntityID,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func collectIDs(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]int64, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
