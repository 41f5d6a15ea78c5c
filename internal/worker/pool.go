package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/flashqueue/internal/logger"
)

// ErrStopped is returned by Submit once the pool has been stopped.
var ErrStopped = errors.New("worker pool stopped")

type Job interface {
	Run(context.Context) error
	Name() string
	// Key routes the job to a worker. Jobs with equal keys run one at a
	// time in submission order.
	Key() int64
}

// Pool runs jobs on a fixed set of workers, each with its own queue, so
// every key is handled by a single worker.
type Pool struct {
	shards  []chan Job
	wg      sync.WaitGroup
	workers int
	queue   int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)

	shards := make([]chan Job, workers)
	for i := range shards {
		shards[i] = make(chan Job, queueSize)
	}
	return &Pool{
		shards:  shards,
		workers: workers,
		queue:   queueSize,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i, jobs := range p.shards {
		p.wg.Add(1)
		go func(id int, jobs <-chan Job) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-jobs:
					if !ok {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					p.run(ctx, workerLog, job)
				}
			}
		}(i+1, jobs)
	}
}

func (p *Pool) run(ctx context.Context, workerLog *logger.Logger, job Job) {
	jobLog := workerLog.WithFields(map[string]any{"job": job.Name(), "key": job.Key()})
	jobLog.Debug("starting job")
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			jobLog.Error("job panicked after %v: %v", time.Since(start), rec)
		}
	}()

	if err := job.Run(logger.NewContext(ctx, jobLog)); err != nil {
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
	} else {
		jobLog.Debug("job completed in %v", time.Since(start))
	}
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, jobs := range p.shards {
		close(jobs)
	}
	p.mu.Unlock()

	p.log.Info("stopping worker pool")
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Info("worker pool stopped")
}

// Submit queues job on the worker owning its key. It blocks while that
// worker's queue is full unless ctx is done first.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	p.log.Debug("submitting job: %s", job.Name())
	select {
	case p.shards[p.shard(job.Key())] <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) shard(key int64) int {
	return int(uint64(key) % uint64(len(p.shards)))
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	n := 0
	for _, jobs := range p.shards {
		n += len(jobs)
	}
	return n
}
