package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goto/salt/log"
)

var (
	ErrTypeExists  = errors.New("handler for given job type exists")
	ErrUnknownType = errors.New("job type is invalid")
	ErrNoJob       = errors.New("no job found")
)

// Worker provides asynchronous job processing on top of a JobProcessor.
type Worker struct {
	workers      int
	pollInterval time.Duration

	processor JobProcessor
	logger    log.Logger

	mu       sync.RWMutex
	handlers map[string]JobHandler
}

type Option func(w *Worker) error

// New returns a Worker with defaults of 1 worker thread, 1s poll interval and
// a noop logger.
func New(processor JobProcessor, opts ...Option) (*Worker, error) {
	w := &Worker{
		processor: processor,
		handlers:  make(map[string]JobHandler),
	}
	for _, opt := range withDefaults(opts) {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("new worker: %w", err)
		}
	}
	return w, nil
}

// Register registers the handler invoked for jobs of the given type.
// Returns ErrTypeExists if the type is already registered.
func (w *Worker) Register(typ string, h JobHandler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.handlers[typ]; exists {
		return fmt.Errorf("register handler: %w: type '%s'", ErrTypeExists, typ)
	}
	if err := h.Sanitize(); err != nil {
		return fmt.Errorf("register handler: %w: type '%s'", err, typ)
	}

	w.handlers[typ] = h
	return nil
}

// Enqueue submits all jobs for processing.
func (w *Worker) Enqueue(ctx context.Context, specs ...JobSpec) error {
	jobs := make([]Job, 0, len(specs))
	for _, spec := range specs {
		job, err := NewJob(spec)
		if err != nil {
			return fmt.Errorf("worker enqueue: %w", err)
		}
		jobs = append(jobs, job)
	}
	return w.processor.Enqueue(ctx, jobs...)
}

// Run starts the worker threads that dequeue and process ready jobs. It
// blocks until the context is canceled, which shuts the threads down
// gracefully.
func (w *Worker) Run(baseCtx context.Context) error {
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(w.workers)
	for i := 0; i < w.workers; i++ {
		go func(id int) {
			defer wg.Done()
			w.runWorker(ctx)
			w.logger.Info("worker exited", "worker_id", id)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func (w *Worker) runWorker(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			types := w.getTypes()
			if len(types) == 0 {
				w.logger.Warn("no job-handler registered, skipping poll")
				timer.Reset(w.pollInterval)
				continue
			}

			if err := w.processor.Process(ctx, types, w.processJob); err != nil && !errors.Is(err, ErrNoJob) {
				w.logger.Error("process job failed", "err", err)
			}
			timer.Reset(w.pollInterval)
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) Job {
	const invalidTypeBackoff = 5 * time.Minute

	start := time.Now()
	h, ok := w.jobHandler(job.Type)
	if !ok {
		// Process() filters by registered types, so this is a safety net
		// against nil-dereference only.
		job.LastError = ErrUnknownType.Error()
		job.RunAt = time.Now().Add(invalidTypeBackoff)
		return job
	}

	job.Attempt(ctx, time.Now(), h)

	w.logger.Info("job attempted",
		"job_id", job.ID,
		"job_type", job.Type,
		"attempts_done", job.AttemptsDone,
		"job_status", job.Status,
		"last_error", job.LastError,
		"time_ms", time.Since(start).Milliseconds(),
	)
	return job
}

func (w *Worker) jobHandler(typ string) (JobHandler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h, ok := w.handlers[typ]
	return h, ok
}

func (w *Worker) getTypes() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	types := make([]string, 0, len(w.handlers))
	for typ := range w.handlers {
		types = append(types, typ)
	}
	return types
}

func WithLogger(l log.Logger) Option {
	return func(w *Worker) error {
		if l == nil {
			l = log.NewNoop()
		}
		w.logger = l
		return nil
	}
}

func WithRunConfig(workers int, pollInterval time.Duration) Option {
	return func(w *Worker) error {
		if workers <= 0 {
			workers = 1
		}

		const minPollInterval = 10 * time.Millisecond
		if pollInterval < minPollInterval {
			pollInterval = minPollInterval
		}

		w.workers = workers
		w.pollInterval = pollInterval
		return nil
	}
}

func withDefaults(opts []Option) []Option {
	return append([]Option{
		WithLogger(nil),
		WithRunConfig(1, time.Second),
	}, opts...)
}
