package sim

import (
	"context"
	"sync"
)

// StageBarrier holds every truck of a fixed-size cohort until all of them
// have arrived, then releases them together. Reusable: the last arrival
// starts a new generation.
type StageBarrier struct {
	mu      sync.Mutex
	parties int
	count   int
	release chan struct{} // closed when the current generation trips
}

// NewStageBarrier creates a barrier for parties trucks. Panics if parties <= 0.
func NewStageBarrier(parties int) *StageBarrier {
	if parties <= 0 {
		panic("barrier parties must be > 0")
	}
	return &StageBarrier{parties: parties, release: make(chan struct{})}
}

// SignalAndWait records an arrival and blocks until the generation trips or
// ctx is done. A cancelled waiter stays counted: the run it belongs to is
// being torn down.
func (b *StageBarrier) SignalAndWait(ctx context.Context) error {
	b.mu.Lock()
	b.count++
	release := b.release
	if b.count == b.parties {
		// Last arrival: reset and wake everyone.
		b.count = 0
		b.release = make(chan struct{})
		close(release)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Parties returns the cohort size.
func (b *StageBarrier) Parties() int { return b.parties }

// Arrived returns how many trucks are waiting in the current generation.
func (b *StageBarrier) Arrived() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
