package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
	"github.com/spec-kit/ticket-import/internal/repository"
)

// CreatorGateway adapts the ticket, follow-up and rights repositories to the
// importer's creation collaborator.
type CreatorGateway struct {
	tickets   repository.TicketRepository
	followups repository.FollowupRepository
	rights    repository.RightsRepository
}

// NewCreatorGateway builds the gateway.
func NewCreatorGateway(tickets repository.TicketRepository, followups repository.FollowupRepository, rights repository.RightsRepository) *CreatorGateway {
	return &CreatorGateway{tickets: tickets, followups: followups, rights: rights}
}

// CanCreate reads the actor's ticket right on every call; rights may change
// during a run.
func (g *CreatorGateway) CanCreate(ctx context.Context, actorID int64) (bool, error) {
	if actorID <= 0 {
		return false, nil
	}
	granted, err := g.rights.Get(ctx, actorID, domain.RightNameTicket)
	if err != nil {
		return false, err
	}
	return granted.Has(domain.RightCreate), nil
}

func (g *CreatorGateway) Create(ctx context.Context, input *domain.TicketInput) (int64, error) {
	return g.tickets.Create(ctx, input)
}

func (g *CreatorGateway) AddFollowup(ctx context.Context, ticketID int64, content string, actorID int64) error {
	return g.followups.Create(ctx, &domain.Followup{
		TicketID: ticketID,
		UserID:   actorID,
		Content:  content,
	})
}

// LookupGateway resolves names against users and the catalog tables.
type LookupGateway struct {
	users   repository.UserRepository
	catalog repository.CatalogRepository
}

// NewLookupGateway builds the gateway.
func NewLookupGateway(users repository.UserRepository, catalog repository.CatalogRepository) *LookupGateway {
	return &LookupGateway{users: users, catalog: catalog}
}

var catalogKinds = map[importer.LookupKind]domain.CatalogKind{
	importer.LookupCategory: domain.CatalogCategory,
	importer.LookupEntity:   domain.CatalogEntity,
	importer.LookupLocation: domain.CatalogLocation,
	importer.LookupGroup:    domain.CatalogGroup,
}

func (g *LookupGateway) FindByName(ctx context.Context, kind importer.LookupKind, name string) ([]int64, error) {
	if kind == importer.LookupUser {
		return g.users.FindByName(ctx, name)
	}
	catalogKind, ok := catalogKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported lookup kind %q", kind)
	}
	return g.catalog.FindByName(ctx, catalogKind, name)
}

// DefaultsGateway reads the stored import defaults and falls back to the
// environment configuration when none are stored.
type DefaultsGateway struct {
	repo     repository.ImportConfigRepository
	fallback domain.ImportDefaults
}

// NewDefaultsGateway builds the gateway.
func NewDefaultsGateway(repo repository.ImportConfigRepository, cfg config.ImportConfig) *DefaultsGateway {
	return &DefaultsGateway{repo: repo, fallback: FallbackDefaults(cfg)}
}

// FallbackDefaults converts the environment configuration into defaults.
func FallbackDefaults(cfg config.ImportConfig) domain.ImportDefaults {
	return domain.ImportDefaults{
		EntityID:   cfg.DefaultEntity,
		CategoryID: cfg.DefaultCategory,
		Urgency:    cfg.DefaultUrgency,
		Impact:     cfg.DefaultImpact,
		Priority:   cfg.DefaultPriority,
	}
}

func (g *DefaultsGateway) GetDefaults(ctx context.Context) (domain.ImportDefaults, error) {
	if g.repo == nil {
		return g.fallback, nil
	}
	stored, err := g.repo.Get(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return g.fallback, nil
	}
	if err != nil {
		return domain.ImportDefaults{}, err
	}
	return *stored, nil
}
