// Package inmem provides an in-process JobProcessor with trigger coalescing.
//
// Jobs carrying the same type and payload collapse into the single pending
// instance, so a burst of identical triggers (e.g. view-refresh requests
// fired by every write in a batch) results in one execution. A job that is
// already being processed does not absorb new triggers: an identical job
// enqueued mid-flight is queued again, which is what guarantees the derived
// state eventually reflects the write that arrived during the refresh.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/spotlight-project/spotlight/pkg/worker"
)

type Processor struct {
	mu      sync.Mutex
	pending []worker.Job
	dead    []worker.Job
}

func NewProcessor() *Processor {
	return &Processor{}
}

// Enqueue adds jobs to the queue. A job whose type and payload match a
// pending (not in-flight) job is coalesced into it, keeping the earlier
// RunAt.
func (p *Processor) Enqueue(_ context.Context, jobs ...worker.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, job := range jobs {
		if idx := p.findPending(job); idx >= 0 {
			if job.RunAt.Before(p.pending[idx].RunAt) {
				p.pending[idx].RunAt = job.RunAt
			}
			continue
		}
		p.pending = append(p.pending, job)
	}
	return nil
}

// Process pops the earliest ready job of one of the given types and runs fn
// on it. The job is removed from the queue for the duration of fn, so an
// identical job enqueued concurrently is treated as a fresh trigger.
func (p *Processor) Process(ctx context.Context, types []string, fn worker.JobExecutorFunc) error {
	job, ok := p.dequeue(types)
	if !ok {
		return worker.ErrNoJob
	}

	done := fn(ctx, job)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch done.Status {
	case worker.StatusDone:
		// cleared
	case worker.StatusDead:
		p.dead = append(p.dead, done)
	default:
		// retry later at done.RunAt
		p.pending = append(p.pending, done)
	}
	return nil
}

// Stats reports pending and dead job counts per type.
func (p *Processor) Stats() map[string]TypeStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make(map[string]TypeStats)
	for _, job := range p.pending {
		st := stats[job.Type]
		st.Pending++
		stats[job.Type] = st
	}
	for _, job := range p.dead {
		st := stats[job.Type]
		st.Dead++
		stats[job.Type] = st
	}
	return stats
}

type TypeStats struct {
	Pending int
	Dead    int
}

func (p *Processor) findPending(job worker.Job) int {
	for i, pending := range p.pending {
		if pending.Type == job.Type && string(pending.Payload) == string(job.Payload) {
			return i
		}
	}
	return -1
}

func (p *Processor) dequeue(types []string) (worker.Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	best := -1
	for i, job := range p.pending {
		if _, ok := wanted[job.Type]; !ok {
			continue
		}
		if job.RunAt.After(now) {
			continue
		}
		if best < 0 || job.RunAt.Before(p.pending[best].RunAt) {
			best = i
		}
	}
	if best < 0 {
		return worker.Job{}, false
	}

	job := p.pending[best]
	p.pending = append(p.pending[:best], p.pending[best+1:]...)
	return job, true
}
