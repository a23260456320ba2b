package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, input *domain.TicketInput) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, name, content, urgency, impact, priority, type, status, global_validation,
               category_id, entity_id, location_id, requester_id, assignee_id, group_id,
               date, time_to_resolve, actiontime, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, input *domain.TicketInput) (int64, error) {
	date, err := parseTimestamp(input.Date)
	if err != nil {
		return 0, fmt.Errorf("date: %w", err)
	}
	ttr, err := parseTimestamp(input.TimeToResolve)
	if err != nil {
		return 0, fmt.Errorf("time_to_resolve: %w", err)
	}

	const query = `
        INSERT INTO tickets (name, content, urgency, impact, priority, type, status, global_validation,
            category_id, entity_id, location_id, requester_id, assignee_id, group_id,
            date, time_to_resolve, actiontime)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id`
	var id int64
	err = r.pool.QueryRow(ctx, query,
		input.Name,
		input.Content,
		input.Urgency,
		input.Impact,
		input.Priority,
		input.Type,
		input.Status,
		input.Validation,
		input.CategoryID,
		input.EntityID,
		input.LocationID,
		input.RequesterID,
		input.AssigneeID,
		input.GroupID,
		date,
		ttr,
		input.ActionTime,
	).Scan(&id)
	return id, err
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ANY($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Name,
			&ticket.Content,
			&ticket.Urgency,
			&ticket.Impact,
			&ticket.Priority,
			&ticket.Type,
			&ticket.Status,
			&ticket.Validation,
			&ticket.CategoryID,
			&ticket.EntityID,
			&ticket.LocationID,
			&ticket.RequesterID,
			&ticket.AssigneeID,
			&ticket.GroupID,
			&ticket.Date,
			&ticket.TimeToResolve,
			&ticket.ActionTime,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

var timestampLayouts = []string{
	domain.DateTimeLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp converts a canonical ticket date into a column value. An
// empty string stores NULL.
func parseTimestamp(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unsupported timestamp %q", s)
}
