package cache

import (
	"context"

	"finance-tracker-api/internal/logger"
)

// Invalidator exposes pattern-scoped cache clearing to mutating handlers.
// Every operation is best-effort: an unreachable store turns the call into a
// logged no-op, and staleness is then bounded by entry TTLs.
type Invalidator struct {
	store Store
}

// NewInvalidator constructs an Invalidator over the given store.
func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// ClearByPattern deletes every cached entry matching the glob pattern.
func (inv *Invalidator) ClearByPattern(ctx context.Context, pattern string) {
	count, err := inv.store.DeleteMatching(ctx, pattern)
	if err != nil {
		logger.GetLogger().Warnf("cache: invalidate %s failed: %v", pattern, err)
		return
	}
	logger.GetLogger().Debugf("cache: invalidated %d entries for %s", count, pattern)
}

// ClearForPrincipal deletes every cached entry belonging to one principal,
// across all paths.
func (inv *Invalidator) ClearForPrincipal(ctx context.Context, principalID string) {
	inv.ClearByPattern(ctx, PrincipalPattern(principalID))
}

// ClearForDomain deletes cached entries under a path fragment. An empty
// principalID clears the domain for every principal.
func (inv *Invalidator) ClearForDomain(ctx context.Context, pathFragment, principalID string) {
	inv.ClearByPattern(ctx, DomainPattern(pathFragment, principalID))
}
