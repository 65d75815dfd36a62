package domain

import (
	"context"
	"time"
)

// BlobResolver mints pre-signed URLs for scan blobs.
type BlobResolver interface {
	ResolveUploadTarget(ctx context.Context, contentType string) (UploadTarget, error)
	ResolveFetchURL(ctx context.Context, key string) (string, error)
}

// UploadTarget is a one-time destination for a client-side upload.
type UploadTarget struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}
