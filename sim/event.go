package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/fleet-sim/fleet-sim/sim/trace"
)

// Stage names carried on every progress event.
const (
	StageLoading = "loading"
	StageRouting = "routing"
	StageArrival = "arrival"
)

// reporter emits progress events: one structured log entry per event and,
// when a trace is attached, one trace record.
type reporter struct {
	log   *logrus.Entry
	trace *trace.FleetTrace // nil disables recording
}

func newReporter(runID string, st *trace.FleetTrace) *reporter {
	return &reporter{
		log:   logrus.WithField("run", runID),
		trace: st,
	}
}

func (r *reporter) entry(t *Truck, stage string) *logrus.Entry {
	return r.log.WithFields(logrus.Fields{"truck": t.ID, "stage": stage})
}

func (r *reporter) loadingStarted(t *Truck, adm Admission, ms int) {
	r.entry(t, StageLoading).WithFields(logrus.Fields{"cohort": adm.Cohort, "ms": ms}).
		Infof("Truck %s started loading", t.ID)
}

func (r *reporter) loadingFinished(t *Truck, adm Admission, ms int) {
	r.entry(t, StageLoading).WithFields(logrus.Fields{"cohort": adm.Cohort, "ms": ms}).
		Infof("Truck %s finished loading after %d milliseconds", t.ID, ms)
	if r.trace != nil {
		r.trace.RecordLoading(trace.LoadingRecord{Truck: t.ID, Cohort: adm.Cohort, DurationMs: ms})
	}
}

func (r *reporter) routeAssigned(t *Truck, order int, route string) {
	r.entry(t, StageRouting).WithFields(logrus.Fields{"order": order, "route": route}).
		Infof("Truck %s received route %s", t.ID, route)
	if r.trace != nil {
		r.trace.RecordRouting(trace.RoutingRecord{Truck: t.ID, Order: order, Route: route})
	}
}

func (r *reporter) arrivalAnnounced(t *Truck, turn, ms int) {
	r.entry(t, StageArrival).WithFields(logrus.Fields{"turn": turn, "ms": ms}).
		Infof("Truck %s expected arrival time %d milliseconds", t.ID, ms)
	if r.trace != nil {
		r.trace.RecordArrival(trace.ArrivalRecord{Truck: t.ID, Turn: turn, ArrivalMs: ms})
	}
}

func (r *reporter) deliveryCanceled(t *Truck, ms int) {
	r.entry(t, StageArrival).WithField("ms", ms).
		Infof("Truck %s delivery canceled, return time %d milliseconds", t.ID, ms)
}

func (r *reporter) unloadingStarted(t *Truck, ms int) {
	r.entry(t, StageArrival).WithField("ms", ms).
		Infof("Truck %s arrived, unloading time %d milliseconds", t.ID, ms)
}

func (r *reporter) finished(t *Truck, outcome Outcome, waitMs int) {
	r.entry(t, StageArrival).WithFields(logrus.Fields{"outcome": outcome, "ms": waitMs}).
		Infof("Truck %s successfully %s", t.ID, outcome)
	if r.trace != nil {
		r.trace.RecordOutcome(trace.OutcomeRecord{Truck: t.ID, Outcome: string(outcome), WaitMs: waitMs})
	}
}
