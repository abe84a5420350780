package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruckState_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, TruckState("created"), StateCreated)
	assert.Equal(t, TruckState("loading"), StateLoading)
	assert.Equal(t, TruckState("routing"), StateRouting)
	assert.Equal(t, TruckState("arrival"), StateArrival)
	assert.Equal(t, TruckState("returned"), StateReturned)
	assert.Equal(t, TruckState("unloaded"), StateUnloaded)
}

func TestNewTruck_IdentityAndInitialState(t *testing.T) {
	tr := NewTruck(7, NewDurationSampler(rand.New(rand.NewSource(1))))
	assert.Equal(t, "Truck_7", tr.ID)
	assert.Equal(t, 7, tr.Index)
	assert.Equal(t, StateCreated, tr.State())
	assert.Contains(t, tr.String(), "Truck_7")
}

func TestTruck_Advance_FollowsPipelineOrder(t *testing.T) {
	for _, terminal := range []TruckState{StateReturned, StateUnloaded} {
		tr := NewTruck(1, nil)
		for _, s := range []TruckState{StateLoading, StateRouting, StateArrival, terminal} {
			require.NoError(t, tr.advance(s))
		}
		assert.True(t, tr.State().IsTerminal())
	}
}

func TestTruck_Advance_RejectsSkippedStage(t *testing.T) {
	tr := NewTruck(1, nil)
	err := tr.advance(StateRouting)
	assert.ErrorIs(t, err, ErrInvariantViolated)
	assert.Equal(t, StateCreated, tr.State())
}

func TestTruck_Advance_TerminalIsFinal(t *testing.T) {
	tr := NewTruck(1, nil)
	for _, s := range []TruckState{StateLoading, StateRouting, StateArrival, StateUnloaded} {
		require.NoError(t, tr.advance(s))
	}
	assert.ErrorIs(t, tr.advance(StateReturned), ErrInvariantViolated)
}

func TestTruck_MarkQueued_Idempotent(t *testing.T) {
	tr := NewTruck(1, nil)
	tr.markQueued()
	tr.markQueued()
	select {
	case <-tr.queued:
	default:
		t.Fatal("queued channel not closed")
	}
}

func TestLoadingLedger_KeyedByIdentity(t *testing.T) {
	// GIVEN two trucks that loaded for the same duration
	l := NewLoadingLedger()
	require.NoError(t, l.Record("Truck_1", 1200))
	require.NoError(t, l.Record("Truck_2", 1200))

	// THEN each lookup still resolves to its own truck
	ms, err := l.Lookup("Truck_2")
	require.NoError(t, err)
	assert.Equal(t, 1200, ms)
	assert.Equal(t, 2, l.Len())
}

func TestLoadingLedger_MissingEntry_IsInvariantViolation(t *testing.T) {
	l := NewLoadingLedger()
	_, err := l.Lookup("Truck_9")
	assert.ErrorIs(t, err, ErrInvariantViolated)
}

func TestLoadingLedger_DoubleRecord_IsInvariantViolation(t *testing.T) {
	l := NewLoadingLedger()
	require.NoError(t, l.Record("Truck_1", 800))
	assert.ErrorIs(t, l.Record("Truck_1", 900), ErrInvariantViolated)
}
