package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/db"
)

type mockQueueStore struct {
	rpushFn func(ctx context.Context, key string, values ...string) error
	blpopFn func(ctx context.Context, key string, timeout time.Duration) (string, error)
	llenFn  func(ctx context.Context, key string) (int64, error)
}

func (m *mockQueueStore) RPush(ctx context.Context, key string, values ...string) error {
	if m.rpushFn != nil {
		return m.rpushFn(ctx, key, values...)
	}
	return nil
}

func (m *mockQueueStore) BLPop(ctx context.Context, key string, timeout time.Duration) (string, error) {
	if m.blpopFn != nil {
		return m.blpopFn(ctx, key, timeout)
	}
	return "", db.ErrPopTimeout
}

func (m *mockQueueStore) LLen(ctx context.Context, key string) (int64, error) {
	if m.llenFn != nil {
		return m.llenFn(ctx, key)
	}
	return 0, nil
}

func TestQueueKey(t *testing.T) {
	q := NewQueue(&mockQueueStore{}, "analyze")
	if got := q.Key(); got != "herbadex:jobs:analyze" {
		t.Errorf("Key() = %q, want herbadex:jobs:analyze", got)
	}
}

func TestEnqueue(t *testing.T) {
	ms := &mockQueueStore{}
	var gotKey string
	var gotValues []string
	ms.rpushFn = func(_ context.Context, key string, values ...string) error {
		gotKey = key
		gotValues = values
		return nil
	}

	q := NewQueue(ms, "analyze")
	if err := q.Enqueue(context.Background(), AnalyzeJob{ImageID: "img-1", Revision: 1}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if gotKey != "herbadex:jobs:analyze" {
		t.Errorf("key = %q", gotKey)
	}
	if len(gotValues) != 1 {
		t.Fatalf("len(values) = %d, want 1", len(gotValues))
	}

	var job AnalyzeJob
	if err := json.Unmarshal([]byte(gotValues[0]), &job); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if job.ImageID != "img-1" || job.Revision != 1 {
		t.Errorf("job = %+v", job)
	}
}

func TestDequeue(t *testing.T) {
	ms := &mockQueueStore{}
	ms.blpopFn = func(_ context.Context, _ string, _ time.Duration) (string, error) {
		return `{"imageId":"img-2","revision":3}`, nil
	}

	q := NewQueue(ms, "analyze")
	job, err := q.Dequeue(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if job.ImageID != "img-2" || job.Revision != 3 {
		t.Errorf("job = %+v", job)
	}
}

func TestDequeueTimeout(t *testing.T) {
	q := NewQueue(&mockQueueStore{}, "analyze")
	if _, err := q.Dequeue(context.Background(), time.Second); !errors.Is(err, db.ErrPopTimeout) {
		t.Errorf("Dequeue() error = %v, want ErrPopTimeout", err)
	}
}

func TestDequeueMalformedBody(t *testing.T) {
	ms := &mockQueueStore{}
	ms.blpopFn = func(_ context.Context, _ string, _ time.Duration) (string, error) {
		return "not json", nil
	}

	q := NewQueue(ms, "analyze")
	if _, err := q.Dequeue(context.Background(), time.Second); err == nil {
		t.Error("Dequeue() error = nil, want decode error")
	}
}

func TestPoolProcessesJobs(t *testing.T) {
	ms := &mockQueueStore{}
	var delivered atomic.Bool
	ms.blpopFn = func(_ context.Context, _ string, _ time.Duration) (string, error) {
		if delivered.CompareAndSwap(false, true) {
			return `{"imageId":"img-7","revision":1}`, nil
		}
		return "", db.ErrPopTimeout
	}

	handled := make(chan AnalyzeJob, 1)
	pool := NewPool(
		NewQueue(ms, "analyze"),
		func(_ context.Context, job AnalyzeJob) error {
			select {
			case handled <- job:
			default:
			}
			return nil
		},
		2, time.Millisecond, zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	select {
	case job := <-handled:
		if job.ImageID != "img-7" {
			t.Errorf("job.ImageID = %q, want img-7", job.ImageID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	pool.Wait()
}

func TestPoolStopsOnCancel(t *testing.T) {
	pool := NewPool(
		NewQueue(&mockQueueStore{}, "analyze"),
		func(_ context.Context, _ AnalyzeJob) error { return nil },
		1, time.Millisecond, zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancel")
	}
}
