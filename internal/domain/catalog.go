package domain

// CatalogKind names a lookup table resolvable by item name.
type CatalogKind string

const (
	CatalogCategory CatalogKind = "category"
	CatalogEntity   CatalogKind = "entity"
	CatalogLocation CatalogKind = "location"
	CatalogGroup    CatalogKind = "group"
)

// CatalogItem is a named row of a lookup table.
type CatalogItem struct {
	ID       int64
	Kind     CatalogKind
	Name     string
	EntityID int64
}

// ImportDefaults are the configured fallback values of an import run.
type ImportDefaults struct {
	EntityID   int64
	CategoryID int64
	Urgency    int
	Impact     int
	Priority   int
}
