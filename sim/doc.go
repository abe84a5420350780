// Package sim runs a fleet of trucks through a three-stage pipeline:
// bounded loading, serialized routing, and arrival with a return-or-unload branch.
//
// # Reading Guide
//
// Start with these three files to understand the pipeline:
//   - truck.go: Truck lifecycle (created → loading → routing → arrival → returned|unloaded)
//   - pipeline.go: TruckPipeline, which drives one truck through every stage
//   - fleet.go: Fleet launch, WaitAll, and the RunFleet entry point
//
// # Coordination Primitives
//
// Each stage is built from a small, independently tested primitive:
//   - AdmissionGate (admission.go): FIFO, capacity-bounded admission with cohort or sliding reclaim
//   - StageBarrier (barrier.go): reusable all-parties rendezvous between loading and routing
//   - TurnSignal (turn.go): single-token handoff serializing arrival announcements
//   - LoadingLedger (ledger.go): per-truck loading durations read back at unload time
//   - RouteBoard (routes.go): route list with a shared cursor
//
// Every blocking call takes a context.Context; cancelling it unwinds the whole fleet.
//
// # Randomness
//
// Durations come from DurationSource. By default each truck gets its own
// DurationSampler derived from PartitionedRNG, so a seed reproduces every
// truck's draws regardless of scheduling order.
//
// Stage events are logged through logrus and optionally recorded into a
// sim/trace FleetTrace for post-run analysis.
package sim
