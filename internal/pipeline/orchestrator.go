package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/config"
	"github.com/dgallion1/agridoc/internal/history"
	"github.com/dgallion1/agridoc/internal/metrics"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("pipeline is stopped")

// HistoryStore receives every completed reply.
type HistoryStore interface {
	Add(ctx context.Context, item history.Item) (history.Item, error)
}

// Orchestrator runs generation jobs on a fixed worker pool.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	gen     assistant.Generator
	hist    HistoryStore
	stats   *assistant.LLMStats
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     config.Config
	backoff func(attempt int, err error) time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards stopped and the send on queue against close in Stop.
	mu      sync.RWMutex
	stopped bool
}

// NewOrchestrator creates the pipeline. hist, stats and m may be nil.
func NewOrchestrator(cfg config.Config, gen assistant.Generator, hist HistoryStore, stats *assistant.LLMStats, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		gen:     gen,
		hist:    hist,
		stats:   stats,
		metrics: m,
		log:     log,
		cfg:     cfg,
		backoff: Backoff,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.gen, o.hist, o.stats, o.metrics, o.log)
			w.backoff = o.backoff
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Later Submit calls fail with
// ErrStopped; calling Stop again is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for p and returns it.
func (o *Orchestrator) Submit(p assistant.Prompt) (*Job, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return nil, ErrStopped
	}

	job := NewJob(p)
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return job, nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return job, fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
