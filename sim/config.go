package sim

import (
	"fmt"
	"time"
)

// Reference scenario defaults.
const (
	DefaultTrucks            = 10
	DefaultLoadingCapacity   = 2
	DefaultLoadingMinMs      = 500
	DefaultLoadingMaxMs      = 5001 // exclusive
	DefaultArrivalMinMs      = 500
	DefaultArrivalMaxMs      = 5000 // exclusive
	DefaultCancelThresholdMs = 3000
	DefaultUnloadDivisor     = 2.0

	// RoutingCapacity is fixed: route assignment is fully serialized.
	RoutingCapacity = 1
)

// Final wait policies. Valid names are defined in ValidFinalWaitPolicies (bundle.go).
const (
	// FinalWaitShared holds one fleet-wide lock across every return/unload wait.
	FinalWaitShared = "shared"
	// FinalWaitPerTruck lets return/unload waits overlap.
	FinalWaitPerTruck = "per-truck"
)

// LoadingConfig groups loading stage parameters.
type LoadingConfig struct {
	Capacity int // max trucks loading at once
	MinMs    int // inclusive
	MaxMs    int // exclusive
}

// ArrivalConfig groups arrival stage parameters.
type ArrivalConfig struct {
	MinMs             int     // inclusive
	MaxMs             int     // exclusive
	CancelThresholdMs int     // arrival above this cancels the delivery
	UnloadDivisor     float64 // unloading ms = loading ms / UnloadDivisor
	FinalWait         string  // "shared" (default) or "per-truck"
}

// FleetConfig holds everything a Fleet run needs besides the route list.
type FleetConfig struct {
	Trucks          int           // cohort size; also the barrier's party count
	Seed            int64         // master seed for per-truck duration samplers
	TimeUnit        time.Duration // wall-clock length of one simulated millisecond
	AdmissionPolicy string        // "cohort" (default) or "sliding"
	OrderedLaunch   bool          // launch truck i+1 only after truck i is queued for loading

	Loading LoadingConfig
	Arrival ArrivalConfig
}

// DefaultFleetConfig returns the reference scenario: 10 trucks, 2 loading at a time,
// real milliseconds.
func DefaultFleetConfig() FleetConfig {
	return FleetConfig{
		Trucks:          DefaultTrucks,
		Seed:            42,
		TimeUnit:        time.Millisecond,
		AdmissionPolicy: AdmissionCohort,
		Loading: LoadingConfig{
			Capacity: DefaultLoadingCapacity,
			MinMs:    DefaultLoadingMinMs,
			MaxMs:    DefaultLoadingMaxMs,
		},
		Arrival: ArrivalConfig{
			MinMs:             DefaultArrivalMinMs,
			MaxMs:             DefaultArrivalMaxMs,
			CancelThresholdMs: DefaultCancelThresholdMs,
			UnloadDivisor:     DefaultUnloadDivisor,
			FinalWait:         FinalWaitShared,
		},
	}
}

// Validate checks fleet size, ranges and policy names.
func (c FleetConfig) Validate() error {
	if c.Trucks < 1 {
		return fmt.Errorf("trucks must be >= 1, got %d", c.Trucks)
	}
	if c.TimeUnit <= 0 {
		return fmt.Errorf("time unit must be positive, got %v", c.TimeUnit)
	}
	if !IsValidAdmissionPolicy(c.AdmissionPolicy) {
		return fmt.Errorf("unknown admission policy %q", c.AdmissionPolicy)
	}
	if c.Loading.Capacity < 1 {
		return fmt.Errorf("loading capacity must be >= 1, got %d", c.Loading.Capacity)
	}
	if c.Loading.MinMs < 0 || c.Loading.MaxMs <= c.Loading.MinMs {
		return fmt.Errorf("loading range [%d, %d) is empty or negative", c.Loading.MinMs, c.Loading.MaxMs)
	}
	if c.Arrival.MinMs < 0 || c.Arrival.MaxMs <= c.Arrival.MinMs {
		return fmt.Errorf("arrival range [%d, %d) is empty or negative", c.Arrival.MinMs, c.Arrival.MaxMs)
	}
	if c.Arrival.CancelThresholdMs < 0 {
		return fmt.Errorf("cancel threshold must be non-negative, got %d", c.Arrival.CancelThresholdMs)
	}
	if c.Arrival.UnloadDivisor <= 0 {
		return fmt.Errorf("unload divisor must be positive, got %f", c.Arrival.UnloadDivisor)
	}
	if !IsValidFinalWaitPolicy(c.Arrival.FinalWait) {
		return fmt.Errorf("unknown final wait policy %q", c.Arrival.FinalWait)
	}
	return nil
}

// Duration converts simulated milliseconds to wall-clock time.
func (c FleetConfig) Duration(ms int) time.Duration {
	return time.Duration(ms) * c.TimeUnit
}

// UnloadingMs returns the unloading time for a truck that loaded for loadingMs.
func (c FleetConfig) UnloadingMs(loadingMs int) int {
	return int(float64(loadingMs) / c.Arrival.UnloadDivisor)
}

// WorstCaseMs bounds, in simulated ms, how long a run can take before every
// truck reaches a terminal state.
func (c FleetConfig) WorstCaseMs() int {
	maxLoading := c.Loading.MaxMs - 1
	maxArrival := c.Arrival.MaxMs - 1

	loadingRounds := c.Trucks
	if c.AdmissionPolicy == AdmissionCohort || c.AdmissionPolicy == "" {
		loadingRounds = (c.Trucks + c.Loading.Capacity - 1) / c.Loading.Capacity
	}

	maxFinal := max(maxArrival, c.UnloadingMs(maxLoading))
	finalRounds := 1
	if c.Arrival.FinalWait == FinalWaitShared || c.Arrival.FinalWait == "" {
		finalRounds = c.Trucks
	}
	return loadingRounds*maxLoading + maxArrival + finalRounds*maxFinal
}
