// Package specsearch implements the reference catalog search aggregator.
package specsearch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/domain"
	domspec "github.com/kailas-cloud/herbadex/internal/domain/specimen"
	repospec "github.com/kailas-cloud/herbadex/internal/repository/specimen"
)

// scopeFields lists the per-index fan-out in merge priority order.
var scopeFields = []struct {
	scope domspec.Scope
	field string
}{
	{domspec.ScopeName, repospec.FieldFullName},
	{domspec.ScopeCollectors, repospec.FieldCollectors},
	{domspec.ScopeCountry, repospec.FieldCountry},
}

// Service aggregates ranked searches over the reference catalog.
type Service struct {
	catalog      Catalog
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// New creates a search service.
func New(catalog Catalog, defaultLimit, maxLimit int, logger *zap.Logger) *Service {
	return &Service{
		catalog:      catalog,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// Search runs a scoped catalog query. A blank query lists the catalog in
// index default order. Scope "all" fans out to every index concurrently and
// merges results in fixed priority order (name, collectors, country),
// deduplicated by record identity with the first occurrence winning, then
// truncated to limit. Equal inputs always yield the same ordering.
func (s *Service) Search(ctx context.Context, query, scope string, limit int) ([]domspec.Record, error) {
	parsed, ok := domspec.ParseScope(scope)
	if !ok {
		return nil, fmt.Errorf("unknown scope %q: %w", scope, domain.ErrInvalidArgument)
	}
	limit = s.clampLimit(limit)

	query = strings.TrimSpace(query)
	if query == "" {
		records, err := s.catalog.ListDefault(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list catalog: %w", err)
		}
		return records, nil
	}

	if parsed != domspec.ScopeAll {
		records, err := s.catalog.SearchField(ctx, fieldFor(parsed), query, limit)
		if err != nil {
			return nil, fmt.Errorf("search scope %s: %w", parsed, err)
		}
		return records, nil
	}

	return s.searchAll(ctx, query, limit)
}

// searchAll queries the three indexes concurrently into fixed slots so the
// merge order never depends on goroutine scheduling.
func (s *Service) searchAll(ctx context.Context, query string, limit int) ([]domspec.Record, error) {
	results := make([][]domspec.Record, len(scopeFields))
	errs := make([]error, len(scopeFields))

	var wg sync.WaitGroup
	for i, sf := range scopeFields {
		wg.Add(1)
		go func(slot int, field string) {
			defer wg.Done()
			results[slot], errs[slot] = s.catalog.SearchField(ctx, field, query, limit)
		}(i, sf.field)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("search scope %s: %w", scopeFields[i].scope, err)
		}
	}

	merged := make([]domspec.Record, 0, limit)
	seen := make(map[string]bool)
	for _, slot := range results {
		for i := range slot {
			if seen[slot[i].ID()] {
				continue
			}
			seen[slot[i].ID()] = true
			merged = append(merged, slot[i])
			if len(merged) == limit {
				return merged, nil
			}
		}
	}
	return merged, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func fieldFor(scope domspec.Scope) string {
	for _, sf := range scopeFields {
		if sf.scope == scope {
			return sf.field
		}
	}
	return repospec.FieldFullName
}
