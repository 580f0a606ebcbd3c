package worker

import "context"

// JobProcessor is a job store/queue that holds jobs until they are ready and
// hands them out one at a time for processing.
type JobProcessor interface {
	// Enqueue stores all jobs with all-or-nothing behavior. Jobs with a
	// zero-value or historical RunAt are ready immediately. Implementations
	// may coalesce a job with an already-pending job carrying the same type
	// and payload.
	Enqueue(ctx context.Context, jobs ...Job) error

	// Process dequeues one ready job of one of the given types and invokes fn
	// with it. The job stays invisible to other Process calls until fn
	// returns; the processor then clears, retries or buries the job based on
	// the returned status.
	Process(ctx context.Context, types []string, fn JobExecutorFunc) error
}

// JobExecutorFunc handles one ready job and returns the updated job with the
// attempt result recorded.
type JobExecutorFunc func(context.Context, Job) Job
