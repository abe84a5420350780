package sim

import (
	"context"
	"sync"
	"sync/atomic"
)

// Arrival is the outcome of one truck's arrival stage.
type Arrival struct {
	Ms      int // sampled arrival time
	Turn    int // 1-based announcement order
	Outcome Outcome
	WaitMs  int // return transit or unloading time
}

// ArrivalStage serializes arrival-time announcements turn by turn, lets the
// arrival waits overlap, then branches on the arrival time into a return or
// an unload.
type ArrivalStage struct {
	cfg    FleetConfig
	ledger *LoadingLedger
	turn   *TurnSignal
	report *reporter

	turns atomic.Int64

	finalMu   sync.Mutex // held across the final wait under FinalWaitShared
	inFinal   atomic.Int32
	peakFinal atomic.Int32
}

func newArrivalStage(cfg FleetConfig, ledger *LoadingLedger, turn *TurnSignal, rep *reporter) *ArrivalStage {
	return &ArrivalStage{cfg: cfg, ledger: ledger, turn: turn, report: rep}
}

// Arrive runs the arrival stage for t.
func (s *ArrivalStage) Arrive(ctx context.Context, t *Truck) (Arrival, error) {
	if err := t.advance(StateArrival); err != nil {
		return Arrival{}, err
	}

	if err := s.turn.Wait(ctx); err != nil {
		return Arrival{}, err
	}
	ms := t.rng.Next(s.cfg.Arrival.MinMs, s.cfg.Arrival.MaxMs)
	turn := int(s.turns.Add(1))
	s.report.arrivalAnnounced(t, turn, ms)
	s.turn.Signal()

	if err := sleepCtx(ctx, s.cfg.Duration(ms)); err != nil {
		return Arrival{}, err
	}

	arr := Arrival{Ms: ms, Turn: turn}
	if ms > s.cfg.Arrival.CancelThresholdMs {
		arr.Outcome = OutcomeReturned
		arr.WaitMs = ms
		err := s.finalWait(ctx, func() { s.report.deliveryCanceled(t, ms) }, ms)
		if err != nil {
			return Arrival{}, err
		}
		if err := t.advance(StateReturned); err != nil {
			return Arrival{}, err
		}
	} else {
		loadingMs, err := s.ledger.Lookup(t.ID)
		if err != nil {
			return Arrival{}, err
		}
		arr.Outcome = OutcomeUnloaded
		arr.WaitMs = s.cfg.UnloadingMs(loadingMs)
		err = s.finalWait(ctx, func() { s.report.unloadingStarted(t, arr.WaitMs) }, arr.WaitMs)
		if err != nil {
			return Arrival{}, err
		}
		if err := t.advance(StateUnloaded); err != nil {
			return Arrival{}, err
		}
	}
	s.report.finished(t, arr.Outcome, arr.WaitMs)
	return arr, nil
}

// finalWait announces and then blocks for ms, holding the shared lock
// throughout unless the policy is FinalWaitPerTruck.
func (s *ArrivalStage) finalWait(ctx context.Context, announce func(), ms int) error {
	if s.cfg.Arrival.FinalWait != FinalWaitPerTruck {
		s.finalMu.Lock()
		defer s.finalMu.Unlock()
	}

	n := s.inFinal.Add(1)
	defer s.inFinal.Add(-1)
	for {
		p := s.peakFinal.Load()
		if n <= p || s.peakFinal.CompareAndSwap(p, n) {
			break
		}
	}

	announce()
	return sleepCtx(ctx, s.cfg.Duration(ms))
}

// PeakFinalWaits returns the largest number of trucks seen in their final
// wait at the same time.
func (s *ArrivalStage) PeakFinalWaits() int { return int(s.peakFinal.Load()) }
