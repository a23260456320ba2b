package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
	"github.com/spec-kit/ticket-import/internal/repository"
)

type memTickets struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	err     error
}

func (m *memTickets) Create(_ context.Context, in *domain.TicketInput) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	id := int64(len(m.tickets) + 1)
	m.tickets = append(m.tickets, domain.Ticket{
		ID:          id,
		Name:        in.Name,
		Content:     in.Content,
		Priority:    in.Priority,
		EntityID:    in.EntityID,
		RequesterID: in.RequesterID,
		CategoryID:  in.CategoryID,
	})
	return id, nil
}

func (m *memTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	for _, t := range m.tickets {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTickets) ListByIDs(_ context.Context, ids []int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, id := range ids {
		for _, t := range m.tickets {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

type memFollowups struct {
	followups []domain.Followup
	err       error
}

func (m *memFollowups) Create(_ context.Context, f *domain.Followup) error {
	if m.err != nil {
		return m.err
	}
	f.ID = int64(len(m.followups) + 1)
	m.followups = append(m.followups, *f)
	return nil
}

func (m *memFollowups) ListByTicket(_ context.Context, ticketID int64) ([]domain.Followup, error) {
	var out []domain.Followup
	for _, f := range m.followups {
		if f.TicketID == ticketID {
			out = append(out, f)
		}
	}
	return out, nil
}

type memUsers struct {
	users []*domain.User
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	for _, u := range m.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) FindByName(_ context.Context, name string) ([]int64, error) {
	var ids []int64
	for _, u := range m.users {
		if u.Login == name || u.RealName == name || u.FirstName == name || u.Email == name {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

type memCatalog struct {
	items []domain.CatalogItem
}

func (m *memCatalog) Create(_ context.Context, item *domain.CatalogItem) error {
	item.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *item)
	return nil
}

func (m *memCatalog) FindByName(_ context.Context, kind domain.CatalogKind, name string) ([]int64, error) {
	var ids []int64
	for _, it := range m.items {
		if it.Kind == kind && it.Name == name {
			ids = append(ids, it.ID)
		}
	}
	return ids, nil
}

func (m *memCatalog) List(_ context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	for _, it := range m.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out, nil
}

type memImportConfig struct {
	stored *domain.ImportDefaults
	err    error
}

func (m *memImportConfig) Get(context.Context) (*domain.ImportDefaults, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stored == nil {
		return nil, pgx.ErrNoRows
	}
	d := *m.stored
	return &d, nil
}

func (m *memImportConfig) Save(_ context.Context, d domain.ImportDefaults) error {
	m.stored = &d
	return nil
}

type memRights map[int64]map[string]domain.Right

func (m memRights) Get(_ context.Context, userID int64, name string) (domain.Right, error) {
	return m[userID][name], nil
}

func (m memRights) Grant(_ context.Context, userID int64, name string, rights domain.Right) error {
	if m[userID] == nil {
		m[userID] = map[string]domain.Right{}
	}
	m[userID][name] = rights
	return nil
}

type memRuns struct {
	runs  map[uuid.UUID]importer.Result
	order []uuid.UUID
}

func newMemRuns() *memRuns {
	return &memRuns{runs: map[uuid.UUID]importer.Result{}}
}

func (m *memRuns) Save(_ context.Context, r *importer.Result) error {
	m.runs[r.RunID] = *r
	m.order = append([]uuid.UUID{r.RunID}, m.order...)
	return nil
}

func (m *memRuns) Get(_ context.Context, id uuid.UUID) (*importer.Result, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, repository.ErrRunNotFound
	}
	return &r, nil
}

func (m *memRuns) ListByActor(_ context.Context, actorID int64, limit int) ([]importer.Result, error) {
	out := []importer.Result{}
	for _, id := range m.order {
		if r := m.runs[id]; r.ActorID == actorID && (limit <= 0 || len(out) < limit) {
			out = append(out, r)
		}
	}
	return out, nil
}
