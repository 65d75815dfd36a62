// Package image implements the scan ingest and analysis pipeline.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/domain"
	"github.com/kailas-cloud/herbadex/internal/domain/analysis"
	domimg "github.com/kailas-cloud/herbadex/internal/domain/image"
	"github.com/kailas-cloud/herbadex/internal/metrics"
)

// Envelope kinds written on analysis failure.
const (
	failureKindProvider  = "Failed to analyze image"
	failureKindMalformed = "Malformed analysis output"
)

// SubmitInput carries the metadata of a completed client-side upload.
type SubmitInput struct {
	Name        string
	ContentType string
	Size        int64
	StorageKey  string
}

// Service coordinates uploads, record ingest, and the analysis pipeline.
type Service struct {
	repo   Repository
	blob   domain.BlobResolver
	vision domain.VisionExtractor
	queue  Enqueuer
	logger *zap.Logger
	now    func() time.Time
}

// New creates an image service.
func New(
	repo Repository,
	blob domain.BlobResolver,
	vision domain.VisionExtractor,
	queue Enqueuer,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:   repo,
		blob:   blob,
		vision: vision,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// PrepareUpload mints a pre-signed upload target for the client.
func (s *Service) PrepareUpload(ctx context.Context, contentType string) (domain.UploadTarget, error) {
	if contentType == "" {
		return domain.UploadTarget{}, fmt.Errorf("content type is required: %w", domain.ErrInvalidArgument)
	}

	target, err := s.blob.ResolveUploadTarget(ctx, contentType)
	if err != nil {
		return domain.UploadTarget{}, fmt.Errorf("prepare upload: %w", err)
	}
	return target, nil
}

// Submit registers an uploaded scan: resolves its fetch URL, persists a
// pending record, and enqueues exactly one analysis job for it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (domimg.Record, error) {
	if in.StorageKey == "" {
		return domimg.Record{}, fmt.Errorf("storage key is required: %w", domain.ErrInvalidArgument)
	}

	url, err := s.blob.ResolveFetchURL(ctx, in.StorageKey)
	if err != nil {
		return domimg.Record{}, fmt.Errorf("resolve fetch url: %w", err)
	}

	rec, err := domimg.New(uuid.NewString(), in.Name, in.ContentType, in.Size, url, s.now())
	if err != nil {
		return domimg.Record{}, fmt.Errorf("validate image: %w: %w", domain.ErrInvalidArgument, err)
	}

	if err := s.repo.Create(ctx, &rec); err != nil {
		return domimg.Record{}, fmt.Errorf("create image: %w", err)
	}

	if err := s.queue.EnqueueAnalyze(ctx, rec.ID(), rec.Revision()); err != nil {
		// The record stays pending; a re-submit would duplicate it, so
		// surface the failure instead of retrying here.
		return domimg.Record{}, fmt.Errorf("enqueue analysis for %s: %w", rec.ID(), err)
	}

	s.logger.Info("image submitted",
		zap.String("image_id", rec.ID()),
		zap.String("name", rec.Name()),
		zap.Int64("size", rec.Size()))

	return rec, nil
}

// Get returns a record by ID.
func (s *Service) Get(ctx context.Context, id string) (domimg.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domimg.Record{}, fmt.Errorf("get image: %w", err)
	}
	return rec, nil
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]domimg.Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return records, nil
}

// SetAnalysis overwrites the analysis field without shape validation or a
// revision check. Administrative override surface.
func (s *Service) SetAnalysis(ctx context.Context, id, value string) error {
	if err := s.repo.SetAnalysis(ctx, id, value); err != nil {
		return fmt.Errorf("set analysis: %w", err)
	}
	return nil
}

// Analyze runs one analysis job to its terminal state. Provider and
// normalization failures land in the record as error envelopes rather than
// propagating; only infrastructure failures return an error. A revision that
// moved on since enqueue makes the job a no-op, so re-delivery is safe.
func (s *Service) Analyze(ctx context.Context, imageID string, revision int) error {
	rec, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return fmt.Errorf("load image %s: %w", imageID, err)
	}

	value, state := s.runExtraction(ctx, &rec)

	err = s.repo.CompareAndSetAnalysis(ctx, imageID, value, revision)
	switch {
	case err == nil:
		metrics.AnalysisOutcomesTotal.WithLabelValues(state.String()).Inc()
		s.logger.Info("analysis stored",
			zap.String("image_id", imageID),
			zap.Int("revision", revision),
			zap.String("state", state.String()))
		return nil
	case errors.Is(err, domain.ErrRevisionConflict):
		// Someone wrote a newer value while this job ran. Their write wins.
		metrics.AnalysisOutcomesTotal.WithLabelValues("stale").Inc()
		s.logger.Warn("analysis discarded as stale",
			zap.String("image_id", imageID),
			zap.Int("revision", revision))
		return nil
	default:
		return fmt.Errorf("store analysis for %s: %w", imageID, err)
	}
}

// runExtraction produces the terminal analysis value for a record: the
// canonical structured JSON on success, an error envelope otherwise.
func (s *Service) runExtraction(ctx context.Context, rec *domimg.Record) (string, analysis.State) {
	result, err := s.vision.Extract(ctx, rec.URL())
	if err != nil {
		s.logger.Warn("vision extraction failed",
			zap.String("image_id", rec.ID()),
			zap.Error(err))
		return analysis.Envelope(failureKindProvider, err.Error()), analysis.Failed
	}

	normalized, err := analysis.Normalize(result.Raw)
	if err != nil {
		s.logger.Warn("vision output not parseable",
			zap.String("image_id", rec.ID()),
			zap.Error(err))
		return analysis.Envelope(failureKindMalformed, err.Error()), analysis.Failed
	}

	return normalized, analysis.Succeeded
}
