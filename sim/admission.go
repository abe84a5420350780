package sim

import (
	"context"
	"fmt"
	"sync"
)

// Admission reclaim policies. Valid names are defined in ValidAdmissionPolicies (bundle.go).
const (
	// AdmissionCohort reclaims permits only once every member of the current
	// admission cohort has released. Admits at most Capacity trucks per cohort.
	// N trucks form exactly ceil(N/Capacity) cohorts only when all N are queued
	// before the first cohort drains; a late Enter can find a drained cohort and
	// open a short one. Fleet.OrderedLaunch gives that guarantee in practice.
	AdmissionCohort = "cohort"
	// AdmissionSliding returns each permit as soon as its holder releases it.
	AdmissionSliding = "sliding"
)

// Admission describes one granted permit.
type Admission struct {
	Cohort int // 1-based admission cohort index
	Order  int // 1-based grant order over the gate's lifetime
}

// Ticket is a place in an AdmissionGate's FIFO queue.
type Ticket struct {
	seq   int
	ready chan Admission
}

// Seq returns the 1-based queue position assigned by Enter.
func (t *Ticket) Seq() int { return t.seq }

// AdmissionGate bounds how many trucks may be inside a stage at once.
// Waiters are admitted strictly in Enter order and park on a channel;
// there is no polling. Safe for concurrent use.
//
// Invariant: 0 <= available <= capacity, and held counts granted-but-unreleased permits.
type AdmissionGate struct {
	name     string
	capacity int
	policy   string

	mu        sync.Mutex
	queue     []*Ticket
	nextSeq   int
	available int
	held      int
	granted   int

	// cohort policy bookkeeping
	cohort         int
	cohortAdmitted int
	cohortReleased int
	cohortSizes    []int
}

// NewAdmissionGate creates a gate admitting up to capacity holders.
// An empty policy defaults to AdmissionCohort.
// Panics on capacity < 1 or unrecognized policy names.
func NewAdmissionGate(name string, capacity int, policy string) *AdmissionGate {
	if capacity < 1 {
		panic(fmt.Sprintf("admission gate %q: capacity must be >= 1, got %d", name, capacity))
	}
	if !IsValidAdmissionPolicy(policy) {
		panic(fmt.Sprintf("unknown admission policy %q", policy))
	}
	if policy == "" {
		policy = AdmissionCohort
	}
	return &AdmissionGate{
		name:      name,
		capacity:  capacity,
		policy:    policy,
		available: capacity,
	}
}

// Enter takes a place in the queue without blocking.
// The returned ticket must be passed to Wait.
func (g *AdmissionGate) Enter() *Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextSeq++
	t := &Ticket{seq: g.nextSeq, ready: make(chan Admission, 1)}
	g.queue = append(g.queue, t)
	g.dispatchLocked()
	return t
}

// Wait blocks until t is admitted or ctx is done. On cancellation the ticket
// is withdrawn; a permit granted in the meantime is handed back.
func (g *AdmissionGate) Wait(ctx context.Context, t *Ticket) (Admission, error) {
	select {
	case a := <-t.ready:
		return a, nil
	case <-ctx.Done():
	}

	g.mu.Lock()
	for i, q := range g.queue {
		if q == t {
			g.queue = append(g.queue[:i], g.queue[i+1:]...)
			g.mu.Unlock()
			return Admission{}, ctx.Err()
		}
	}
	g.mu.Unlock()

	// Not queued any more, so the grant is already buffered.
	<-t.ready
	g.Release()
	return Admission{}, ctx.Err()
}

// Acquire enters the queue and waits for a permit.
func (g *AdmissionGate) Acquire(ctx context.Context) (Admission, error) {
	return g.Wait(ctx, g.Enter())
}

// Release returns a permit obtained from Acquire or Wait.
// Panics if no permit is held.
func (g *AdmissionGate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == 0 {
		panic(fmt.Sprintf("admission gate %q: release without a held permit: %v", g.name, ErrInvariantViolated))
	}
	g.held--

	switch g.policy {
	case AdmissionCohort:
		g.cohortReleased++
		if g.cohortReleased == g.cohortAdmitted {
			// Cohort drained: open the next one.
			g.cohortAdmitted = 0
			g.cohortReleased = 0
			g.available = g.capacity
		}
	case AdmissionSliding:
		g.available++
	}
	g.dispatchLocked()
}

// dispatchLocked grants permits to queued tickets in FIFO order.
// Caller must hold g.mu.
func (g *AdmissionGate) dispatchLocked() {
	for g.available > 0 && len(g.queue) > 0 {
		t := g.queue[0]
		g.queue[0] = nil
		g.queue = g.queue[1:]

		g.available--
		g.held++
		g.granted++

		var cohort int
		if g.policy == AdmissionCohort {
			if g.cohortAdmitted == 0 {
				g.cohort++
				g.cohortSizes = append(g.cohortSizes, 0)
			}
			g.cohortAdmitted++
			g.cohortSizes[len(g.cohortSizes)-1] = g.cohortAdmitted
			cohort = g.cohort
		} else {
			cohort = (g.granted-1)/g.capacity + 1
		}
		t.ready <- Admission{Cohort: cohort, Order: g.granted}
	}
}

// Name returns the gate's name.
func (g *AdmissionGate) Name() string { return g.name }

// Capacity returns the maximum number of concurrent holders.
func (g *AdmissionGate) Capacity() int { return g.capacity }

// Policy returns the reclaim policy name.
func (g *AdmissionGate) Policy() string { return g.policy }

// Held returns the number of permits currently held.
func (g *AdmissionGate) Held() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// Waiting returns the number of queued tickets not yet admitted.
func (g *AdmissionGate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Cohorts returns the size of every admission cohort formed so far.
// Always empty under AdmissionSliding.
func (g *AdmissionGate) Cohorts() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, len(g.cohortSizes))
	copy(out, g.cohortSizes)
	return out
}
