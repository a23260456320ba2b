package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-import/internal/domain"
)

// CatalogRepository reads the named lookup tables referenced by tickets.
type CatalogRepository interface {
	Create(ctx context.Context, item *domain.CatalogItem) error
	FindByName(ctx context.Context, kind domain.CatalogKind, name string) ([]int64, error)
	List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository builds the repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

var catalogTables = map[domain.CatalogKind]string{
	domain.CatalogCategory: "categories",
	domain.CatalogEntity:   "entities",
	domain.CatalogLocation: "locations",
	domain.CatalogGroup:    "groups",
}

func catalogTable(kind domain.CatalogKind) (string, error) {
	table, ok := catalogTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown catalog kind %q", kind)
	}
	return table, nil
}

func (r *catalogRepository) Create(ctx context.Context, item *domain.CatalogItem) error {
	table, err := catalogTable(item.Kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (name, entity_id) VALUES ($1,$2) RETURNING id`, table)
	return r.pool.QueryRow(ctx, query, item.Name, item.EntityID).Scan(&item.ID)
}

func (r *catalogRepository) FindByName(ctx context.Context, kind domain.CatalogKind, name string) ([]int64, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name=$1 ORDER BY id`, table)
	return collectIDs(ctx, r.pool, query, name)
}

func (r *catalogRepository) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogItem, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, name, entity_id FROM %s ORDER BY name`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogItem
	for rows.Next() {
		item := domain.CatalogItem{Kind: kind}
		if err := rows.Scan(&item.ID, &item.Name, &item.EntityID); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
