package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// FollowupRepository manages notes attached to tickets.
type FollowupRepository interface {
	Create(ctx context.Context, followup *domain.Followup) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Followup, error)
}

type followupRepository struct {
	pool *pgxpool.Pool
}

// NewFollowupRepository builds repository.
func NewFollowupRepository(pool *pgxpool.Pool) FollowupRepository {
	return &followupRepository{pool: pool}
}

func (r *followupRepository) Create(ctx context.Context, followup *domain.Followup) error {
	const query = `
        INSERT INTO followups (ticket_id, user_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		followup.TicketID,
		followup.UserID,
		followup.Content,
	).Scan(&followup.ID, &followup.CreatedAt)
}

func (r *followupRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Followup, error) {
	const query = `
        SELECT id, ticket_id, user_id, content, created_at
        FROM followups WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Followup
	for rows.Next() {
		var f domain.Followup
		if err := rows.Scan(&f.ID, &f.TicketID, &f.UserID, &f.Content, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
