package specimen

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/herbadex/internal/db"
	"github.com/kailas-cloud/herbadex/internal/domain"
	domspec "github.com/kailas-cloud/herbadex/internal/domain/specimen"
)

// Index field names. Each one backs an independently queryable ranked index
// over the reference catalog.
const (
	FieldFullName   = "fullName"
	FieldCollectors = "collectors"
	FieldCountry    = "country"
)

// store is the consumer interface for reference specimens (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the reference catalog read side plus the seed-time write.
type Repo struct {
	store store
}

// New creates a specimen repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchField runs a ranked query against one named index, capped at limit.
func (r *Repo) SearchField(ctx context.Context, field, query string, limit int) ([]domspec.Record, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: IndexName(),
		Field:     field,
		Query:     query,
		TopK:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", field, err)
	}
	return parseResults(sr), nil
}

// ListDefault returns the first limit specimens in index default order.
func (r *Repo) ListDefault(ctx context.Context, limit int) ([]domspec.Record, error) {
	sr, err := r.store.SearchList(ctx, IndexName(), "*", 0, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("list specimens: %w", err)
	}
	return parseResults(sr), nil
}

// Count returns the catalog size.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count specimens: %w", err)
	}
	return n, nil
}

// Upsert writes a catalog row. Used only by the seed loader; the service
// never mutates the catalog.
func (r *Repo) Upsert(ctx context.Context, rec *domspec.Record) error {
	key := specimenKey(rec.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// IndexName returns the FT index name for the reference catalog.
func IndexName() string {
	return domain.KeyPrefix + "specimens:idx"
}

func specimenKey(id string) string {
	return fmt.Sprintf("%sspecimens:%s", domain.KeyPrefix, id)
}

func extractID(key string) string {
	return strings.TrimPrefix(key, domain.KeyPrefix+"specimens:")
}

func parseResults(sr *db.SearchResult) []domspec.Record {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	records := make([]domspec.Record, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		records = append(records, parseHashFields(extractID(entry.Key), entry.Fields))
	}
	return records
}

func buildHashFields(rec *domspec.Record) map[string]string {
	return map[string]string{
		FieldFullName:   rec.FullName(),
		FieldCollectors: rec.Collectors(),
		FieldCountry:    rec.Country(),
		"family":        rec.Family(),
		"genus":         rec.Genus(),
		"species":       rec.Species(),
		"locality":      rec.Locality(),
		"catalogNumber": rec.CatalogNumber(),
		"imageURL":      rec.ImageURL(),
	}
}

func parseHashFields(id string, m map[string]string) domspec.Record {
	return domspec.Reconstruct(
		id,
		m[FieldFullName],
		m[FieldCollectors],
		m[FieldCountry],
		m["family"],
		m["genus"],
		m["species"],
		m["locality"],
		m["catalogNumber"],
		m["imageURL"],
	)
}
