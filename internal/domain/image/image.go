// Package image defines the image record aggregate.
package image

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/herbadex/internal/domain/analysis"
)

// MaxNameLength bounds the upload filename.
const MaxNameLength = 512

// Record is an ingested scan image. Upload metadata and the resolved URL are
// immutable after creation; the analysis field is the only mutable state and
// holds exactly one of the three shapes classified by analysis.StateOf.
type Record struct {
	id          string
	name        string
	contentType string
	size        int64
	url         string
	analysis    string
	revision    int
	createdAt   time.Time
}

// New validates upload metadata and creates a Record in the pending state
// with revision 1.
func New(id, name, contentType string, size int64, url string, createdAt time.Time) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("image ID is required")
	}
	if name == "" {
		return Record{}, fmt.Errorf("name is required")
	}
	if len(name) > MaxNameLength {
		return Record{}, fmt.Errorf("name too long (max %d)", MaxNameLength)
	}
	if contentType == "" {
		return Record{}, fmt.Errorf("content type is required")
	}
	if size <= 0 {
		return Record{}, fmt.Errorf("size must be positive")
	}
	if url == "" {
		return Record{}, fmt.Errorf("url is required")
	}

	return Record{
		id:          id,
		name:        name,
		contentType: contentType,
		size:        size,
		url:         url,
		analysis:    analysis.PendingMarker,
		revision:    1,
		createdAt:   createdAt,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	id, name, contentType string, size int64, url, analysisValue string,
	revision int, createdAt time.Time,
) Record {
	return Record{
		id:          id,
		name:        name,
		contentType: contentType,
		size:        size,
		url:         url,
		analysis:    analysisValue,
		revision:    revision,
		createdAt:   createdAt,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Name returns the upload filename.
func (r *Record) Name() string { return r.name }

// ContentType returns the upload MIME type.
func (r *Record) ContentType() string { return r.contentType }

// Size returns the upload size in bytes.
func (r *Record) Size() int64 { return r.size }

// URL returns the resolved fetch URL of the stored blob.
func (r *Record) URL() string { return r.url }

// Analysis returns the raw analysis field value.
func (r *Record) Analysis() string { return r.analysis }

// Revision returns the optimistic-locking revision.
func (r *Record) Revision() int { return r.revision }

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// State classifies the analysis field's current shape.
func (r *Record) State() analysis.State { return analysis.StateOf(r.analysis) }
