package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// LookupKind names a record family the resolver can search by name.
type LookupKind string

const (
	LookupUser     LookupKind = "user"
	LookupCategory LookupKind = "category"
	LookupEntity   LookupKind = "entity"
	LookupLocation LookupKind = "location"
	LookupGroup    LookupKind = "group"
)

// Creator persists tickets and their follow-ups.
type Creator interface {
	CanCreate(ctx context.Context, actorID int64) (bool, error)
	Create(ctx context.Context, input *domain.TicketInput) (int64, error)
	AddFollowup(ctx context.Context, ticketID int64, content string, actorID int64) error
}

// Lookup finds record identifiers by exact name.
type Lookup interface {
	FindByName(ctx context.Context, kind LookupKind, name string) ([]int64, error)
}

// DefaultsProvider supplies the configured defaults of a run.
type DefaultsProvider interface {
	GetDefaults(ctx context.Context) (domain.ImportDefaults, error)
}

// RunContext carries the caller identity of a run. It replaces any ambient
// session state and is passed explicitly to every stage.
type RunContext struct {
	RunID           uuid.UUID
	ActorID         int64
	ActiveEntityID  int64
	HasActiveEntity bool
}
