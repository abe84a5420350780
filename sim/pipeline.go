package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/fleet-sim/fleet-sim/sim/trace"
)

// TruckPipeline runs Loading → Routing → Arrival for each truck. One pipeline
// is shared by every truck of a run and owns that run's shared state.
type TruckPipeline struct {
	Loading *LoadingStage
	Routing *RoutingStage
	Arrival *ArrivalStage
}

// NewTruckPipeline wires the three stages around one ledger and one arrival turn.
// Progress events are tagged with runID and recorded into st when st is non-nil.
func NewTruckPipeline(cfg FleetConfig, routes []string, runID string, st *trace.FleetTrace) *TruckPipeline {
	rep := newReporter(runID, st)
	ledger := NewLoadingLedger()
	turn := NewTurnSignal()
	return &TruckPipeline{
		Loading: newLoadingStage(cfg, ledger, rep),
		Routing: newRoutingStage(cfg, routes, turn, rep),
		Arrival: newArrivalStage(cfg, ledger, turn, rep),
	}
}

// Run drives t through every stage in order until it reaches a terminal state.
func (p *TruckPipeline) Run(ctx context.Context, t *Truck) (*TruckResult, error) {
	adm, loadingMs, err := p.Loading.Load(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t.ID, StageLoading, err)
	}
	route, order, err := p.Routing.AssignRoute(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t.ID, StageRouting, err)
	}
	arr, err := p.Arrival.Arrive(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t.ID, StageArrival, err)
	}
	return &TruckResult{
		Truck:       t.ID,
		Cohort:      adm.Cohort,
		LoadingMs:   loadingMs,
		Route:       route,
		RouteOrder:  order,
		ArrivalMs:   arr.Ms,
		ArrivalTurn: arr.Turn,
		Outcome:     arr.Outcome,
		FinalWaitMs: arr.WaitMs,
		State:       t.State(),
	}, nil
}

// sleepCtx blocks for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
