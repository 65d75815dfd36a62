package image

import (
	"context"

	domimg "github.com/kailas-cloud/herbadex/internal/domain/image"
)

// Repository defines the storage contract for image records.
type Repository interface {
	Create(ctx context.Context, rec *domimg.Record) error
	Get(ctx context.Context, id string) (domimg.Record, error)
	List(ctx context.Context) ([]domimg.Record, error)
	SetAnalysis(ctx context.Context, id, value string) error
	CompareAndSetAnalysis(ctx context.Context, id, value string, expectedRevision int) error
}

// Enqueuer hands analysis jobs to the worker pool.
type Enqueuer interface {
	EnqueueAnalyze(ctx context.Context, imageID string, revision int) error
}
