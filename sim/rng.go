package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible fleet run.
// Two runs with the same SimulationKey and identical configuration
// draw identical durations for every truck.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemRoutes is the RNG subsystem for generated route lists.
	// Uses master seed directly.
	SubsystemRoutes = "routes"
)

// SubsystemTruck returns the subsystem name for truck N (1-based).
func SubsystemTruck(index int) string {
	return fmt.Sprintf("truck_%d", index)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemRoutes: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: ForSubsystem is safe for concurrent use. The returned
// *rand.Rand is not; wrap it in a DurationSampler before sharing it.
type PartitionedRNG struct {
	key        SimulationKey
	mu         sync.Mutex
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemRoutes {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === DurationSource ===

// DurationSource yields simulated durations in milliseconds.
// Next returns a value in [min, maxExclusive).
type DurationSource interface {
	Next(min, maxExclusive int) int
}

// DurationSampler is a DurationSource backed by a *rand.Rand.
// Safe for concurrent use.
type DurationSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDurationSampler wraps rng. Callers must not draw from rng directly afterwards.
func NewDurationSampler(rng *rand.Rand) *DurationSampler {
	if rng == nil {
		panic("duration sampler requires a non-nil rng")
	}
	return &DurationSampler{rng: rng}
}

// Next returns a pseudo-random integer in [min, maxExclusive).
// Panics if maxExclusive <= min.
func (s *DurationSampler) Next(min, maxExclusive int) int {
	if maxExclusive <= min {
		panic(fmt.Sprintf("invalid duration range [%d, %d)", min, maxExclusive))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Intn(maxExclusive-min)
}
