package sim

import (
	"fmt"
	"sync"
	"time"
)

// testTimeUnit shrinks one simulated millisecond so a full reference run
// finishes in about a second of wall time.
const testTimeUnit = 20 * time.Microsecond

// newTestFleetConfig returns the reference scenario for n trucks on the
// test clock, launched in index order.
func newTestFleetConfig(n int) FleetConfig {
	cfg := DefaultFleetConfig()
	cfg.Trucks = n
	cfg.TimeUnit = testTimeUnit
	cfg.OrderedLaunch = true
	return cfg
}

// testRoutes returns n distinct route IDs.
func testRoutes(n int) []string {
	routes := make([]string, n)
	for i := range routes {
		routes[i] = fmt.Sprintf("R%02d", i+1)
	}
	return routes
}

// runTimeout bounds a test run by the configuration's worst case plus slack.
func runTimeout(cfg FleetConfig) time.Duration {
	return cfg.Duration(cfg.WorstCaseMs()) + 5*time.Second
}

// scriptedSource replays fixed durations in order, ignoring the requested range.
type scriptedSource struct {
	mu     sync.Mutex
	values []int
}

func newScriptedSource(values ...int) *scriptedSource {
	return &scriptedSource{values: values}
}

func (s *scriptedSource) Next(_, _ int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		panic("scripted source exhausted")
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

// expectedDraws replays the seeded per-truck samplers a Fleet would build,
// returning each truck's loading and arrival durations.
func expectedDraws(cfg FleetConfig) (loading, arrival []int) {
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	for i := 1; i <= cfg.Trucks; i++ {
		s := NewDurationSampler(rng.ForSubsystem(SubsystemTruck(i)))
		loading = append(loading, s.Next(cfg.Loading.MinMs, cfg.Loading.MaxMs))
		arrival = append(arrival, s.Next(cfg.Arrival.MinMs, cfg.Arrival.MaxMs))
	}
	return loading, arrival
}
