// Package trace provides stage-event recording for fleet runs.
// It has no dependencies on sim/ and stores pure data types.
package trace

import "time"

// Seq orders records across every kind: a record with a lower Seq was
// recorded strictly before one with a higher Seq.
type Seq uint64

// LoadingRecord captures a truck finishing its load.
type LoadingRecord struct {
	Seq        Seq
	At         time.Time
	Truck      string
	Cohort     int // admission cohort the truck loaded in
	DurationMs int
}

// RoutingRecord captures one route assignment.
type RoutingRecord struct {
	Seq   Seq
	At    time.Time
	Truck string
	Order int // 1-based permit grant order
	Route string
}

// ArrivalRecord captures an arrival-time announcement.
type ArrivalRecord struct {
	Seq       Seq
	At        time.Time
	Truck     string
	Turn      int // 1-based announcement order
	ArrivalMs int
}

// OutcomeRecord captures a truck reaching its terminal branch.
type OutcomeRecord struct {
	Seq     Seq
	At      time.Time
	Truck   string
	Outcome string // "returned" or "unloaded"
	WaitMs  int    // return transit or unloading time
}
