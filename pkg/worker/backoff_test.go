package worker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spotlight-project/spotlight/pkg/worker"
)

func TestConstBackoff(t *testing.T) {
	b := worker.ConstBackoff{Delay: 3 * time.Second}
	assert.Equal(t, 3*time.Second, b.Backoff(1))
	assert.Equal(t, 3*time.Second, b.Backoff(10))
}

func TestExponentialBackoff(t *testing.T) {
	b := &worker.ExponentialBackoff{
		Multiplier:   2,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
	}

	assert.Equal(t, time.Second, b.Backoff(1))
	assert.Equal(t, 2*time.Second, b.Backoff(2))
	assert.Equal(t, 4*time.Second, b.Backoff(3))
	assert.Equal(t, 8*time.Second, b.Backoff(4))
	assert.Equal(t, 10*time.Second, b.Backoff(5), "capped at MaxDelay")
}

func TestExponentialBackoffJitter(t *testing.T) {
	b := &worker.ExponentialBackoff{
		Multiplier:   2,
		InitialDelay: time.Second,
		Jitter:       0.5,
	}

	for i := 0; i < 20; i++ {
		d := b.Backoff(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}
