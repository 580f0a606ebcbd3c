package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type JobStatus string

const (
	StatusUnknown JobStatus = ""
	StatusDone    JobStatus = "done"
	StatusDead    JobStatus = "dead"
)

const minRetryBackoff = 5 * time.Second

var (
	ErrInvalidJob        = errors.New("job is not valid")
	ErrInvalidJobHandler = errors.New("job handler is not valid")
)

// Default handler options.
var (
	DefaultMaxAttempts                     = 3
	DefaultTimeout                         = 5 * time.Second
	DefaultBackoffStrategy BackoffStrategy = DefaultExponentialBackoff
)

// JobSpec is the specification for async processing.
type JobSpec struct {
	Type    string    `json:"type"`
	Payload []byte    `json:"payload"`
	RunAt   time.Time `json:"run_at"`
}

// Job is a JobSpec plus its execution progress.
type Job struct {
	ID ulid.ULID `json:"id"`
	JobSpec

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AttemptsDone  int       `json:"attempts_done"`
	Status        JobStatus `json:"-"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// NewJob sanitizes the given spec and wraps it in a Job.
// Returns ErrInvalidJob if the job type is empty.
func NewJob(spec JobSpec) (Job, error) {
	if spec.Type == "" {
		return Job{}, fmt.Errorf("%w: job type must be set", ErrInvalidJob)
	}

	now := time.Now()
	spec.Type = strings.TrimSpace(strings.ToLower(spec.Type))
	if spec.RunAt.IsZero() {
		spec.RunAt = now
	}
	return Job{
		ID:        ulid.Make(),
		JobSpec:   spec,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Attempt invokes the handler for this job, recovering from panics, and
// updates the job with the attempt result in-place. Retryable failures get a
// new RunAt per the handler's backoff until attempts are exhausted; all other
// failures mark the job dead.
func (j *Job) Attempt(baseCtx context.Context, now time.Time, h JobHandler) {
	defer func() {
		if v := recover(); v != nil {
			j.LastError = fmt.Sprintf("panic: %v", v)
			j.Status = StatusDead
		}

		j.AttemptsDone++
		j.LastAttemptAt = now
		j.UpdatedAt = now
	}()

	select {
	case <-baseCtx.Done():
		j.RunAt = now.Add(minRetryBackoff)
		j.LastError = fmt.Sprintf("canceled: %v", baseCtx.Err())
		return
	default:
	}

	ctx, cancel := context.WithTimeout(baseCtx, h.JobOpts.Timeout)
	defer cancel()
	if err := h.Handle(ctx, j.JobSpec); err != nil {
		var re *RetryableError
		if errors.As(err, &re) && j.AttemptsDone+1 < h.JobOpts.MaxAttempts {
			j.RunAt = now.Add(h.JobOpts.Backoff(j.AttemptsDone + 1))
		} else {
			j.Status = StatusDead
		}
		j.LastError = err.Error()
		return
	}

	j.Status = StatusDone
}

// JobFunc is invoked by the Worker when a job is ready. Returning a
// RetryableError schedules a retry with backoff; any other error or a panic
// marks the job dead.
type JobFunc func(context.Context, JobSpec) error

// JobHandler pairs a JobFunc with its execution options.
type JobHandler struct {
	Handle  JobFunc
	JobOpts JobOptions
}

type JobOptions struct {
	MaxAttempts int
	Timeout     time.Duration
	BackoffStrategy
}

// Sanitize fills defaults for unset options.
// Returns ErrInvalidJobHandler if the Handle function is not set.
func (h *JobHandler) Sanitize() error {
	if h.Handle == nil {
		return fmt.Errorf("sanitize job handler: %w: handle function must be set", ErrInvalidJobHandler)
	}
	if h.JobOpts.MaxAttempts <= 0 {
		h.JobOpts.MaxAttempts = DefaultMaxAttempts
	}
	if h.JobOpts.Timeout <= 0 {
		h.JobOpts.Timeout = DefaultTimeout
	}
	if h.JobOpts.BackoffStrategy == nil {
		h.JobOpts.BackoffStrategy = DefaultBackoffStrategy
	}
	return nil
}

// RetryableError instructs the worker to attempt a retry, subject to the
// handler's MaxAttempts.
type RetryableError struct {
	Cause error
}

func (re *RetryableError) Error() string { return fmt.Sprintf("retryable-error: %v", re.Cause) }

func (re *RetryableError) Unwrap() error { return re.Cause }
