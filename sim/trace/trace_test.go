package trace

import (
	"sync"
	"testing"
)

func TestFleetTrace_RecordLoading_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for stages
	st := NewFleetTrace(TraceConfig{Level: TraceLevelStages})

	// WHEN a loading record is recorded
	st.RecordLoading(LoadingRecord{Truck: "Truck_1", Cohort: 1, DurationMs: 1200})

	// THEN the trace contains one stamped loading record
	if len(st.Loadings) != 1 {
		t.Fatalf("expected 1 loading, got %d", len(st.Loadings))
	}
	if st.Loadings[0].Truck != "Truck_1" {
		t.Errorf("expected Truck_1, got %s", st.Loadings[0].Truck)
	}
	if st.Loadings[0].Seq != 1 {
		t.Errorf("expected seq 1, got %d", st.Loadings[0].Seq)
	}
	if st.Loadings[0].At.IsZero() {
		t.Error("expected At to be stamped")
	}
}

func TestFleetTrace_RecordRouting_AppendsRecord(t *testing.T) {
	st := NewFleetTrace(TraceConfig{Level: TraceLevelStages})

	st.RecordRouting(RoutingRecord{Truck: "Truck_4", Order: 1, Route: "27"})

	if len(st.Routings) != 1 {
		t.Fatalf("expected 1 routing, got %d", len(st.Routings))
	}
	if st.Routings[0].Route != "27" {
		t.Errorf("expected route 27, got %s", st.Routings[0].Route)
	}
}

func TestFleetTrace_SeqIsGlobalAcrossKinds(t *testing.T) {
	// GIVEN a trace
	st := NewFleetTrace(TraceConfig{Level: TraceLevelStages})

	// WHEN records of different kinds are interleaved
	st.RecordLoading(LoadingRecord{Truck: "Truck_1"})
	st.RecordRouting(RoutingRecord{Truck: "Truck_1"})
	st.RecordArrival(ArrivalRecord{Truck: "Truck_1"})
	st.RecordOutcome(OutcomeRecord{Truck: "Truck_1", Outcome: "unloaded"})

	// THEN sequence numbers follow recording order
	seqs := []Seq{st.Loadings[0].Seq, st.Routings[0].Seq, st.Arrivals[0].Seq, st.Outcomes[0].Seq}
	for i, s := range seqs {
		if s != Seq(i+1) {
			t.Errorf("record %d: seq = %d, want %d", i, s, i+1)
		}
	}
}

func TestFleetTrace_ConcurrentRecording_UniqueSeqs(t *testing.T) {
	st := NewFleetTrace(TraceConfig{Level: TraceLevelStages})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.RecordArrival(ArrivalRecord{Truck: "Truck_1"})
		}()
	}
	wg.Wait()

	seen := make(map[Seq]bool)
	for _, a := range st.Arrivals {
		if seen[a.Seq] {
			t.Fatalf("duplicate seq %d", a.Seq)
		}
		seen[a.Seq] = true
	}
	if len(seen) != 100 {
		t.Errorf("expected 100 records, got %d", len(seen))
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"stages", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
