package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotlight-project/spotlight/pkg/worker"
	"github.com/spotlight-project/spotlight/pkg/worker/inmem"
)

func TestWorkerRegister(t *testing.T) {
	w, err := worker.New(inmem.NewProcessor())
	require.NoError(t, err)

	h := worker.JobHandler{
		Handle: func(context.Context, worker.JobSpec) error { return nil },
	}
	assert.NoError(t, w.Register("x", h))
	assert.ErrorIs(t, w.Register("x", h), worker.ErrTypeExists)
	assert.ErrorIs(t, w.Register("bad", worker.JobHandler{}), worker.ErrInvalidJobHandler)
}

func TestWorkerEnqueueInvalidSpec(t *testing.T) {
	w, err := worker.New(inmem.NewProcessor())
	require.NoError(t, err)

	assert.ErrorIs(t, w.Enqueue(context.Background(), worker.JobSpec{}), worker.ErrInvalidJob)
}

func TestWorkerRunProcessesJobs(t *testing.T) {
	w, err := worker.New(inmem.NewProcessor(), worker.WithRunConfig(2, 10*time.Millisecond))
	require.NoError(t, err)

	handled := make(chan string, 1)
	require.NoError(t, w.Register("greet", worker.JobHandler{
		Handle: func(_ context.Context, job worker.JobSpec) error {
			handled <- string(job.Payload)
			return nil
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, w.Enqueue(ctx, worker.JobSpec{Type: "greet", Payload: []byte("hello")}))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case payload := <-handled:
		assert.Equal(t, "hello", payload)
	case <-ctx.Done():
		t.Fatal("job was never processed")
	}

	cancel()
	assert.NoError(t, <-done)
}
