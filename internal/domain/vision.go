package domain

import "context"

// VisionExtractor is the shared image-to-text extraction contract between layers.
type VisionExtractor interface {
	Extract(ctx context.Context, imageURL string) (ExtractionResult, error)
}

// HealthChecker verifies vision provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ExtractionResult carries the raw provider output and token usage.
// Raw is whatever text the model produced; normalization happens later.
type ExtractionResult struct {
	Raw              string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
