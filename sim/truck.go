// Defines the Truck struct that models one unit of the fleet.
// Tracks identity and lifecycle state as the truck moves through loading, routing and arrival.

package sim

import (
	"fmt"
	"sync"
)

// TruckState represents the lifecycle state of a truck.
type TruckState string

const (
	StateCreated  TruckState = "created"
	StateLoading  TruckState = "loading"
	StateRouting  TruckState = "routing"
	StateArrival  TruckState = "arrival"
	StateReturned TruckState = "returned"
	StateUnloaded TruckState = "unloaded"
)

// nextStates lists the legal transitions out of each state.
var nextStates = map[TruckState][]TruckState{
	StateCreated: {StateLoading},
	StateLoading: {StateRouting},
	StateRouting: {StateArrival},
	StateArrival: {StateReturned, StateUnloaded},
}

// IsTerminal reports whether s ends the pipeline.
func (s TruckState) IsTerminal() bool {
	return s == StateReturned || s == StateUnloaded
}

// Outcome is the branch an arriving truck takes.
type Outcome string

const (
	OutcomeReturned Outcome = "returned" // delivery canceled, truck drove back
	OutcomeUnloaded Outcome = "unloaded"
)

// Truck is one independently scheduled unit of the fleet.
type Truck struct {
	ID    string // "Truck_<index>"
	Index int    // 1-based

	rng DurationSource

	mu    sync.Mutex
	state TruckState

	queued chan struct{} // closed once the truck holds a loading ticket
}

// NewTruck creates a truck in StateCreated drawing durations from rng.
func NewTruck(index int, rng DurationSource) *Truck {
	return &Truck{
		ID:     TruckID(index),
		Index:  index,
		rng:    rng,
		state:  StateCreated,
		queued: make(chan struct{}),
	}
}

// TruckID returns the identity of the truck with the given 1-based index.
func TruckID(index int) string {
	return fmt.Sprintf("Truck_%d", index)
}

// State returns the current lifecycle state.
func (t *Truck) State() TruckState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// advance moves the truck to next, rejecting transitions that skip or reorder stages.
func (t *Truck) advance(next TruckState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range nextStates[t.state] {
		if s == next {
			t.state = next
			return nil
		}
	}
	return invariantf("%s: illegal transition %s -> %s", t.ID, t.state, next)
}

// markQueued signals that the truck has taken its place at the loading gate.
func (t *Truck) markQueued() {
	select {
	case <-t.queued:
	default:
		close(t.queued)
	}
}

// This method returns a human-readable string representation of a Truck.
func (t *Truck) String() string {
	return fmt.Sprintf("Truck: (ID: %s, State: %s)", t.ID, t.State())
}

// TruckResult is what a truck's pipeline reports once it reaches a terminal state.
type TruckResult struct {
	Truck       string     // truck ID
	Cohort      int        // loading admission cohort
	LoadingMs   int        // recorded loading duration
	Route       string     // assigned route
	RouteOrder  int        // 1-based routing permit grant order
	ArrivalMs   int        // sampled arrival time
	ArrivalTurn int        // 1-based arrival announcement order
	Outcome     Outcome    // returned or unloaded
	FinalWaitMs int        // return transit or unloading time
	State       TruckState // terminal state
}
