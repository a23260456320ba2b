package importer

import (
	"context"

	"go.uber.org/zap"
)

// Resolver maps free-text names to record identifiers. Every call performs
// exactly one lookup; nothing is cached between rows.
type Resolver struct {
	lookup Lookup
	logger *zap.Logger
}

// NewResolver constructs a resolver over the lookup collaborator.
func NewResolver(lookup Lookup, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve returns the first identifier matching name for kind, or the kind's
// fallback when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, kind LookupKind, name string, rc RunContext) int64 {
	fallback := resolveFallback(kind, rc)
	if r == nil || r.lookup == nil {
		return fallback
	}
	ids, err := r.lookup.FindByName(ctx, kind, name)
	if err != nil {
		r.logger.Warn("name lookup failed",
			zap.String("kind", string(kind)),
			zap.String("name", name),
			zap.Error(err))
		return fallback
	}
	if len(ids) == 0 {
		return fallback
	}
	return ids[0]
}

func resolveFallback(kind LookupKind, rc RunContext) int64 {
	if kind == LookupEntity {
		return rc.ActiveEntityID
	}
	return 0
}
