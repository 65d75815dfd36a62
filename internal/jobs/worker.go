package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/db"
)

// Handler processes one dequeued job.
type Handler func(ctx context.Context, job AnalyzeJob) error

// Pool runs N workers draining the queue until its context is canceled.
type Pool struct {
	queue       *Queue
	handler     Handler
	workers     int
	pollTimeout time.Duration
	logger      *zap.Logger

	wg sync.WaitGroup
}

// NewPool creates a worker pool over the given queue.
func NewPool(queue *Queue, handler Handler, workers int, pollTimeout time.Duration, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		queue:       queue,
		handler:     handler,
		workers:     workers,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Start launches the workers. It returns immediately; call Wait to block
// until all workers have drained after ctx is canceled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			p.run(ctx, workerID)
		}(i)
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, workerID int) {
	log := p.logger.With(zap.Int("worker", workerID), zap.String("queue", p.queue.Key()))
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.pollTimeout)
		if err != nil {
			if errors.Is(err, db.ErrPopTimeout) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error("dequeue failed", zap.Error(err))
			continue
		}

		if err := p.handler(ctx, job); err != nil {
			log.Error("job failed",
				zap.String("image_id", job.ImageID),
				zap.Int("revision", job.Revision),
				zap.Error(err))
		}
	}
}
