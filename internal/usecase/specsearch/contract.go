package specsearch

import (
	"context"

	domspec "github.com/kailas-cloud/herbadex/internal/domain/specimen"
)

// Catalog defines the read contract over the reference specimen indexes.
type Catalog interface {
	SearchField(ctx context.Context, field, query string, limit int) ([]domspec.Record, error)
	ListDefault(ctx context.Context, limit int) ([]domspec.Record, error)
}
