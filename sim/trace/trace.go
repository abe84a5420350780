package trace

import (
	"sync"
	"time"
)

// TraceLevel controls the verbosity of stage tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelStages captures every loading, routing, arrival and outcome event.
	TraceLevelStages TraceLevel = "stages"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelStages: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// FleetTrace collects stage records during a fleet run.
// Record methods are safe for concurrent use; read the slices only after the run.
type FleetTrace struct {
	Config   TraceConfig
	Loadings []LoadingRecord
	Routings []RoutingRecord
	Arrivals []ArrivalRecord
	Outcomes []OutcomeRecord

	mu  sync.Mutex
	seq Seq
	now func() time.Time
}

// NewFleetTrace creates a FleetTrace ready for recording.
func NewFleetTrace(config TraceConfig) *FleetTrace {
	return &FleetTrace{
		Config:   config,
		Loadings: make([]LoadingRecord, 0),
		Routings: make([]RoutingRecord, 0),
		Arrivals: make([]ArrivalRecord, 0),
		Outcomes: make([]OutcomeRecord, 0),
		now:      time.Now,
	}
}

// stampLocked assigns the next sequence number. Caller must hold st.mu.
func (st *FleetTrace) stampLocked() (Seq, time.Time) {
	st.seq++
	return st.seq, st.now()
}

// RecordLoading appends a loading record, stamping Seq and At.
func (st *FleetTrace) RecordLoading(record LoadingRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	record.Seq, record.At = st.stampLocked()
	st.Loadings = append(st.Loadings, record)
}

// RecordRouting appends a routing record, stamping Seq and At.
func (st *FleetTrace) RecordRouting(record RoutingRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	record.Seq, record.At = st.stampLocked()
	st.Routings = append(st.Routings, record)
}

// RecordArrival appends an arrival record, stamping Seq and At.
func (st *FleetTrace) RecordArrival(record ArrivalRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	record.Seq, record.At = st.stampLocked()
	st.Arrivals = append(st.Arrivals, record)
}

// RecordOutcome appends an outcome record, stamping Seq and At.
func (st *FleetTrace) RecordOutcome(record OutcomeRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	record.Seq, record.At = st.stampLocked()
	st.Outcomes = append(st.Outcomes, record)
}
