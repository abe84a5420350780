package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fleet-sim/fleet-sim/sim/trace"
)

// FleetOption customizes a Fleet.
type FleetOption func(*Fleet)

// WithDurationSource replaces the seeded per-truck samplers. fn is called once
// per truck with its 1-based index.
func WithDurationSource(fn func(index int) DurationSource) FleetOption {
	return func(f *Fleet) { f.sources = fn }
}

// WithTrace records every stage event into st.
func WithTrace(st *trace.FleetTrace) FleetOption {
	return func(f *Fleet) { f.trace = st }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) FleetOption {
	return func(f *Fleet) { f.RunID = id }
}

// FleetResult is what a completed run reports.
type FleetResult struct {
	RunID          string
	Trucks         []TruckResult     // index order: Trucks[0] is Truck_1
	Cohorts        []int             // loading admission cohort sizes (cohort policy only)
	PeakFinalWaits int               // most trucks seen in their final wait at once
	Elapsed        time.Duration     // wall-clock run time
	Trace          *trace.FleetTrace // nil unless WithTrace was given
}

// Fleet launches a cohort of trucks through a shared TruckPipeline.
// A Fleet runs once.
type Fleet struct {
	RunID string

	cfg     FleetConfig
	routes  []string
	sources func(index int) DurationSource
	trace   *trace.FleetTrace

	pipeline *TruckPipeline
	group    *errgroup.Group
	cancel   context.CancelFunc
	results  []*TruckResult
	started  time.Time
}

// NewFleet validates cfg and prepares a run. routes must hold at least cfg.Trucks entries.
func NewFleet(cfg FleetConfig, routes []string, opts ...FleetOption) (*Fleet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fleet config: %w", err)
	}
	if len(routes) < cfg.Trucks {
		return nil, fmt.Errorf("route list has %d entries, need at least %d", len(routes), cfg.Trucks)
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	f := &Fleet{
		RunID:  uuid.NewString(),
		cfg:    cfg,
		routes: routes,
		sources: func(index int) DurationSource {
			return NewDurationSampler(rng.ForSubsystem(SubsystemTruck(index)))
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Config returns the validated configuration.
func (f *Fleet) Config() FleetConfig { return f.cfg }

// Start creates Truck_1..Truck_N and launches each pipeline concurrently.
// It returns once every truck is launched; use WaitAll to join them.
func (f *Fleet) Start(ctx context.Context) error {
	if f.group != nil {
		return errors.New("fleet already started")
	}
	ctx, f.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	f.group = g
	f.pipeline = NewTruckPipeline(f.cfg, f.routes, f.RunID, f.trace)
	f.results = make([]*TruckResult, f.cfg.Trucks)
	f.started = time.Now()

	logrus.WithFields(logrus.Fields{
		"run":       f.RunID,
		"trucks":    f.cfg.Trucks,
		"capacity":  f.cfg.Loading.Capacity,
		"admission": f.cfg.AdmissionPolicy,
		"ordered":   f.cfg.OrderedLaunch,
	}).Info("Launching fleet")

launch:
	for i := 1; i <= f.cfg.Trucks; i++ {
		t := NewTruck(i, f.sources(i))
		g.Go(func() error {
			res, err := f.pipeline.Run(gctx, t)
			if err != nil {
				return err
			}
			f.results[t.Index-1] = res
			return nil
		})
		if f.cfg.OrderedLaunch {
			select {
			case <-t.queued:
			case <-gctx.Done():
				break launch
			}
		}
	}
	return nil
}

// WaitAll blocks until every truck reaches a terminal state or the run fails.
// The first truck error cancels the rest and is returned.
func (f *Fleet) WaitAll() (*FleetResult, error) {
	if f.group == nil {
		return nil, errors.New("fleet not started")
	}
	err := f.group.Wait()
	f.cancel()
	if err != nil {
		logrus.WithField("run", f.RunID).Errorf("Fleet run failed: %v", err)
		return nil, err
	}

	res := &FleetResult{
		RunID:          f.RunID,
		Trucks:         make([]TruckResult, len(f.results)),
		Cohorts:        f.pipeline.Loading.Cohorts(),
		PeakFinalWaits: f.pipeline.Arrival.PeakFinalWaits(),
		Elapsed:        time.Since(f.started),
		Trace:          f.trace,
	}
	for i, r := range f.results {
		if r == nil {
			return nil, invariantf("%s finished without a result", TruckID(i+1))
		}
		res.Trucks[i] = *r
	}
	logrus.WithFields(logrus.Fields{"run": f.RunID, "elapsed": res.Elapsed}).Info("Fleet run complete")
	return res, nil
}

// Run starts the fleet and waits for every truck.
func (f *Fleet) Run(ctx context.Context) (*FleetResult, error) {
	if err := f.Start(ctx); err != nil {
		return nil, err
	}
	return f.WaitAll()
}

// RunFleet runs n trucks with the reference configuration over routes.
func RunFleet(ctx context.Context, n int, routes []string) (*FleetResult, error) {
	cfg := DefaultFleetConfig()
	cfg.Trucks = n
	f, err := NewFleet(cfg, routes)
	if err != nil {
		return nil, err
	}
	return f.Run(ctx)
}
