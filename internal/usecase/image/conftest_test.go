package image

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/domain"
	domimg "github.com/kailas-cloud/herbadex/internal/domain/image"
)

// --- Mocks ---

type mockRepo struct {
	createFn func(ctx context.Context, rec *domimg.Record) error
	getFn    func(ctx context.Context, id string) (domimg.Record, error)
	listFn   func(ctx context.Context) ([]domimg.Record, error)
	setFn    func(ctx context.Context, id, value string) error
	casFn    func(ctx context.Context, id, value string, expectedRevision int) error
}

func (m *mockRepo) Create(ctx context.Context, rec *domimg.Record) error {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domimg.Record, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domimg.Record{}, domain.ErrImageNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]domimg.Record, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) SetAnalysis(ctx context.Context, id, value string) error {
	if m.setFn != nil {
		return m.setFn(ctx, id, value)
	}
	return nil
}

func (m *mockRepo) CompareAndSetAnalysis(ctx context.Context, id, value string, expectedRevision int) error {
	if m.casFn != nil {
		return m.casFn(ctx, id, value, expectedRevision)
	}
	return nil
}

type mockBlob struct {
	uploadFn func(ctx context.Context, contentType string) (domain.UploadTarget, error)
	fetchFn  func(ctx context.Context, key string) (string, error)
}

func (m *mockBlob) ResolveUploadTarget(ctx context.Context, contentType string) (domain.UploadTarget, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, contentType)
	}
	return domain.UploadTarget{Key: "scans/test", URL: "https://blob.example/put"}, nil
}

func (m *mockBlob) ResolveFetchURL(ctx context.Context, key string) (string, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, key)
	}
	return "https://blob.example/" + key, nil
}

type mockVision struct {
	extractFn func(ctx context.Context, imageURL string) (domain.ExtractionResult, error)
}

func (m *mockVision) Extract(ctx context.Context, imageURL string) (domain.ExtractionResult, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, imageURL)
	}
	return domain.ExtractionResult{Raw: "{}"}, nil
}

type mockQueue struct {
	enqueueFn func(ctx context.Context, imageID string, revision int) error
	calls     int
}

func (m *mockQueue) EnqueueAnalyze(ctx context.Context, imageID string, revision int) error {
	m.calls++
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, imageID, revision)
	}
	return nil
}

// --- Helpers ---

type testDeps struct {
	repo   *mockRepo
	blob   *mockBlob
	vision *mockVision
	queue  *mockQueue
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		repo:   &mockRepo{},
		blob:   &mockBlob{},
		vision: &mockVision{},
		queue:  &mockQueue{},
	}
	svc := New(deps.repo, deps.blob, deps.vision, deps.queue, zap.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, deps
}

func pendingRecord(t *testing.T, id string) domimg.Record {
	t.Helper()
	rec, err := domimg.New(id, "scan.jpg", "image/jpeg", 2048, "https://blob.example/"+id, time.UnixMilli(1700000000000))
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	return rec
}
