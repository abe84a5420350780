package sim

import "sync"

// LoadingLedger records each truck's loading duration (ms), keyed by truck ID.
// Safe for concurrent use.
type LoadingLedger struct {
	mu      sync.RWMutex
	entries map[string]int
}

// NewLoadingLedger returns an empty ledger.
func NewLoadingLedger() *LoadingLedger {
	return &LoadingLedger{entries: make(map[string]int)}
}

// Record stores the loading duration for truckID. A truck loads once per run,
// so recording it twice is an invariant violation.
func (l *LoadingLedger) Record(truckID string, ms int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.entries[truckID]; ok {
		return invariantf("loading duration for %s already recorded (%d ms)", truckID, prev)
	}
	l.entries[truckID] = ms
	return nil
}

// Lookup returns the recorded loading duration for truckID.
// A missing entry is an invariant violation, never a zero duration.
func (l *LoadingLedger) Lookup(truckID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ms, ok := l.entries[truckID]
	if !ok {
		return 0, invariantf("no loading duration recorded for %s", truckID)
	}
	return ms, nil
}

// Len returns the number of recorded trucks.
func (l *LoadingLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
