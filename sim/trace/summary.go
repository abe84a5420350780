package trace

// TraceSummary aggregates statistics from a FleetTrace.
type TraceSummary struct {
	Trucks           int
	ReturnedCount    int
	UnloadedCount    int
	CohortSizes      map[int]int // admission cohort → trucks loaded in it
	MeanLoadingMs    float64
	MaxLoadingMs     int
	MeanArrivalMs    float64
	MaxArrivalMs     int
	UniqueRoutes     int
	BarrierRespected bool // every routing record follows every loading record
}

// Summarize computes aggregate statistics from a FleetTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *FleetTrace) *TraceSummary {
	summary := &TraceSummary{
		CohortSizes: make(map[int]int),
	}
	if st == nil {
		return summary
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	summary.Trucks = len(st.Loadings)
	var lastLoading Seq
	if len(st.Loadings) > 0 {
		total := 0
		for _, l := range st.Loadings {
			summary.CohortSizes[l.Cohort]++
			total += l.DurationMs
			if l.DurationMs > summary.MaxLoadingMs {
				summary.MaxLoadingMs = l.DurationMs
			}
			if l.Seq > lastLoading {
				lastLoading = l.Seq
			}
		}
		summary.MeanLoadingMs = float64(total) / float64(len(st.Loadings))
	}

	summary.BarrierRespected = true
	routes := make(map[string]bool, len(st.Routings))
	for _, r := range st.Routings {
		routes[r.Route] = true
		if r.Seq < lastLoading {
			summary.BarrierRespected = false
		}
	}
	summary.UniqueRoutes = len(routes)

	if len(st.Arrivals) > 0 {
		total := 0
		for _, a := range st.Arrivals {
			total += a.ArrivalMs
			if a.ArrivalMs > summary.MaxArrivalMs {
				summary.MaxArrivalMs = a.ArrivalMs
			}
		}
		summary.MeanArrivalMs = float64(total) / float64(len(st.Arrivals))
	}

	for _, o := range st.Outcomes {
		switch o.Outcome {
		case "returned":
			summary.ReturnedCount++
		case "unloaded":
			summary.UnloadedCount++
		}
	}
	return summary
}
