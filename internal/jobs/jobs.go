// Package jobs provides a Redis-list backed job queue for the analysis
// pipeline. Producers push JSON job bodies with RPUSH; workers consume
// them with BLPOP so an idle pool holds no connection busy-looping.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/herbadex/internal/domain"
	"github.com/kailas-cloud/herbadex/internal/metrics"
)

// AnalyzeJob is the body of one analysis request. It carries the record
// revision observed at enqueue time so a worker can detect that the
// record moved on before it got to run.
type AnalyzeJob struct {
	ImageID  string `json:"imageId"`
	Revision int    `json:"revision"`
}

// queueStore is the consumer interface for the job list (ISP).
type queueStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	BLPop(ctx context.Context, key string, timeout time.Duration) (string, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// Queue publishes and consumes analysis jobs over a single Redis list.
type Queue struct {
	store queueStore
	name  string
}

// NewQueue creates a queue over the named Redis list.
func NewQueue(store queueStore, name string) *Queue {
	return &Queue{store: store, name: name}
}

// Key returns the Redis key backing the queue.
func (q *Queue) Key() string {
	return domain.KeyPrefix + "jobs:" + q.name
}

// Enqueue pushes one job to the tail of the queue.
func (q *Queue) Enqueue(ctx context.Context, job AnalyzeJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.store.RPush(ctx, q.Key(), string(body)); err != nil {
		return fmt.Errorf("enqueue %s: %w", q.Key(), err)
	}
	return nil
}

// EnqueueAnalyze pushes an analysis job for the given record revision.
func (q *Queue) EnqueueAnalyze(ctx context.Context, imageID string, revision int) error {
	return q.Enqueue(ctx, AnalyzeJob{ImageID: imageID, Revision: revision})
}

// Dequeue blocks up to timeout waiting for the next job.
// Returns db.ErrPopTimeout (wrapped) when nothing arrived.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (AnalyzeJob, error) {
	raw, err := q.store.BLPop(ctx, q.Key(), timeout)
	if err != nil {
		return AnalyzeJob{}, fmt.Errorf("dequeue %s: %w", q.Key(), err)
	}

	var job AnalyzeJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return AnalyzeJob{}, fmt.Errorf("decode job body: %w", err)
	}
	return job, nil
}

// Depth returns the number of pending jobs and refreshes the backlog gauge.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.store.LLen(ctx, q.Key())
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", q.Key(), err)
	}
	metrics.JobsQueueDepth.WithLabelValues(q.name).Set(float64(n))
	return n, nil
}
