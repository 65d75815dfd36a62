package specimen

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/herbadex/internal/db"
	"github.com/kailas-cloud/herbadex/internal/domain"
)

// indexer is the consumer interface for index lifecycle (ISP).
type indexer interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EnsureIndex creates the reference catalog FT index if it does not exist.
// The three TEXT fields back the name, collectors, and country indexes.
func EnsureIndex(ctx context.Context, ix indexer) error {
	def := &db.IndexDefinition{
		Name:        IndexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{domain.KeyPrefix + "specimens:"},
		Fields: []db.IndexField{
			{Name: FieldFullName, Type: db.IndexFieldText},
			{Name: FieldCollectors, Type: db.IndexFieldText},
			{Name: FieldCountry, Type: db.IndexFieldText},
		},
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("index definition: %w", err)
	}

	if err := ix.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}
