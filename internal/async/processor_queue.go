package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/core"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Processor is the part of core.Processor the workers call.
type Processor interface {
	ProcessAreas(ctx context.Context, path string, opts core.AreaOptions) (*core.Outcome, error)
	ProcessLV(ctx context.Context, path string) (*core.Outcome, error)
	ProcessAuto(ctx context.Context, path string) (*core.Outcome, error)
}

type ProcessorQueue struct {
	proc    Processor
	logger  *zap.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Processor, logger *zap.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", zap.Int("worker_id", workerID))
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("queue.worker.stopped", zap.Int("worker_id", workerID))
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}

	var (
		out *core.Outcome
		err error
	)
	switch job.Kind {
	case constants.JobKindAreas:
		out, err = q.proc.ProcessAreas(ctx, job.Path, core.AreaOptions{})
	case constants.JobKindLV:
		out, err = q.proc.ProcessLV(ctx, job.Path)
	default:
		out, err = q.proc.ProcessAuto(ctx, job.Path)
	}

	waited := zap.Duration("queued_for", time.Since(job.SubmittedAt))
	if err != nil {
		q.logger.Error("queue.process.failed", zap.Int("worker_id", workerID), zap.String("path", job.Path), zap.Error(err), waited)
		return
	}
	q.logger.Info("queue.process.ok",
		zap.Int("worker_id", workerID),
		zap.String("path", job.Path),
		zap.Stringer("job_id", out.JobID),
		zap.String("kind", string(out.Kind)),
		waited,
	)
}

// Enqueue blocks while the buffer is full until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", zap.String("path", job.Path))
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", zap.String("path", job.Path))
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", zap.String("path", job.Path))
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
