package sim

import "context"

// LoadingStage admits at most Loading.Capacity trucks at a time, simulates each
// load, and holds every truck at the stage barrier until the whole cohort has loaded.
type LoadingStage struct {
	cfg     FleetConfig
	gate    *AdmissionGate
	ledger  *LoadingLedger
	barrier *StageBarrier
	report  *reporter
}

func newLoadingStage(cfg FleetConfig, ledger *LoadingLedger, rep *reporter) *LoadingStage {
	return &LoadingStage{
		cfg:     cfg,
		gate:    NewAdmissionGate(StageLoading, cfg.Loading.Capacity, cfg.AdmissionPolicy),
		ledger:  ledger,
		barrier: NewStageBarrier(cfg.Trucks),
		report:  rep,
	}
}

// Load runs the loading stage for t and returns its admission and recorded
// loading duration once every truck in the cohort has finished loading.
func (s *LoadingStage) Load(ctx context.Context, t *Truck) (Admission, int, error) {
	if err := t.advance(StateLoading); err != nil {
		return Admission{}, 0, err
	}

	ticket := s.gate.Enter()
	t.markQueued()
	adm, err := s.gate.Wait(ctx, ticket)
	if err != nil {
		return Admission{}, 0, err
	}

	ms := t.rng.Next(s.cfg.Loading.MinMs, s.cfg.Loading.MaxMs)
	if err := s.ledger.Record(t.ID, ms); err != nil {
		s.gate.Release()
		return Admission{}, 0, err
	}
	s.report.loadingStarted(t, adm, ms)

	if err := sleepCtx(ctx, s.cfg.Duration(ms)); err != nil {
		s.gate.Release()
		return Admission{}, 0, err
	}
	recorded, err := s.ledger.Lookup(t.ID)
	if err != nil {
		s.gate.Release()
		return Admission{}, 0, err
	}
	s.report.loadingFinished(t, adm, recorded)
	s.gate.Release()

	if err := s.barrier.SignalAndWait(ctx); err != nil {
		return Admission{}, 0, err
	}
	return adm, recorded, nil
}

// Cohorts returns the size of every loading admission cohort formed so far.
func (s *LoadingStage) Cohorts() []int { return s.gate.Cohorts() }
