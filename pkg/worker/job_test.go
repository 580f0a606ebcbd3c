package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spotlight-project/spotlight/pkg/worker"
)

func TestNewJob(t *testing.T) {
	t.Run("EmptyType", func(t *testing.T) {
		_, err := worker.NewJob(worker.JobSpec{})
		assert.ErrorIs(t, err, worker.ErrInvalidJob)
	})

	t.Run("NormalizesType", func(t *testing.T) {
		job, err := worker.NewJob(worker.JobSpec{Type: "  Refresh-View "})
		assert.NoError(t, err)
		assert.Equal(t, "refresh-view", job.Type)
		assert.False(t, job.RunAt.IsZero())
		assert.NotZero(t, job.ID)
	})

	t.Run("KeepsExplicitRunAt", func(t *testing.T) {
		runAt := time.Now().Add(time.Hour).Truncate(time.Second)
		job, err := worker.NewJob(worker.JobSpec{Type: "x", RunAt: runAt})
		assert.NoError(t, err)
		assert.Equal(t, runAt, job.RunAt)
	})
}

func TestJobAttempt(t *testing.T) {
	frozenTime := time.Unix(1693526400, 0)

	cancelledCtx, cancel := context.WithDeadline(context.Background(), time.Unix(0, 0))
	defer cancel()

	cases := []struct {
		name     string
		ctx      context.Context
		handle   worker.JobFunc
		job      worker.Job
		expected worker.Job
	}{
		{
			name: "Success",
			handle: func(context.Context, worker.JobSpec) error {
				return nil
			},
			expected: worker.Job{
				Status:        worker.StatusDone,
				AttemptsDone:  1,
				LastAttemptAt: frozenTime,
				UpdatedAt:     frozenTime,
			},
		},
		{
			name: "ContextCancelled",
			ctx:  cancelledCtx,
			handle: func(context.Context, worker.JobSpec) error {
				return nil
			},
			expected: worker.Job{
				JobSpec:       worker.JobSpec{RunAt: frozenTime.Add(5 * time.Second)},
				AttemptsDone:  1,
				LastAttemptAt: frozenTime,
				UpdatedAt:     frozenTime,
				LastError:     "canceled: context deadline exceeded",
			},
		},
		{
			name: "Panic",
			handle: func(context.Context, worker.JobSpec) error {
				panic("blown up")
			},
			expected: worker.Job{
				Status:        worker.StatusDead,
				AttemptsDone:  1,
				LastAttemptAt: frozenTime,
				UpdatedAt:     frozenTime,
				LastError:     "panic: blown up",
			},
		},
		{
			name: "NonRetryableError",
			handle: func(context.Context, worker.JobSpec) error {
				return errors.New("no thanks")
			},
			expected: worker.Job{
				Status:        worker.StatusDead,
				AttemptsDone:  1,
				LastAttemptAt: frozenTime,
				UpdatedAt:     frozenTime,
				LastError:     "no thanks",
			},
		},
		{
			name: "RetryableErrorSchedulesRetry",
			handle: func(context.Context, worker.JobSpec) error {
				return &worker.RetryableError{Cause: errors.New("try again")}
			},
			expected: worker.Job{
				JobSpec:       worker.JobSpec{RunAt: frozenTime.Add(time.Minute)},
				AttemptsDone:  1,
				LastAttemptAt: frozenTime,
				UpdatedAt:     frozenTime,
				LastError:     "retryable-error: try again",
			},
		},
		{
			name: "RetryableErrorExhaustsAttempts",
			job:  worker.Job{AttemptsDone: 2},
			handle: func(context.Context, worker.JobSpec) error {
				return &worker.RetryableError{Cause: errors.New("try again")}
			},
			expected: worker.Job{
				Status:        worker.StatusDead,
				AttemptsDone:  3,
				LastAttemptAt: frozenTime,
				UpdatedAt:     frozenTime,
				LastError:     "retryable-error: try again",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := tc.ctx
			if ctx == nil {
				ctx = context.Background()
			}

			h := worker.JobHandler{
				Handle: tc.handle,
				JobOpts: worker.JobOptions{
					MaxAttempts:     3,
					Timeout:         time.Second,
					BackoffStrategy: worker.ConstBackoff{Delay: time.Minute},
				},
			}

			job := tc.job
			job.Attempt(ctx, frozenTime, h)
			assert.Equal(t, tc.expected, job)
		})
	}
}

func TestJobHandlerSanitize(t *testing.T) {
	t.Run("MissingHandle", func(t *testing.T) {
		h := worker.JobHandler{}
		assert.ErrorIs(t, h.Sanitize(), worker.ErrInvalidJobHandler)
	})

	t.Run("FillsDefaults", func(t *testing.T) {
		h := worker.JobHandler{
			Handle: func(context.Context, worker.JobSpec) error { return nil },
		}
		assert.NoError(t, h.Sanitize())
		assert.Equal(t, worker.DefaultMaxAttempts, h.JobOpts.MaxAttempts)
		assert.Equal(t, worker.DefaultTimeout, h.JobOpts.Timeout)
		assert.NotNil(t, h.JobOpts.BackoffStrategy)
	})
}
