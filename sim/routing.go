package sim

import "context"

// RoutingStage hands routes out one truck at a time, in permit grant order,
// and opens the arrival turn once, after the first assignment. From then on
// the arrival stage passes the turn from truck to truck.
type RoutingStage struct {
	gate   *AdmissionGate
	board  *RouteBoard
	turn   *TurnSignal
	report *reporter
}

func newRoutingStage(cfg FleetConfig, routes []string, turn *TurnSignal, rep *reporter) *RoutingStage {
	return &RoutingStage{
		gate:   NewAdmissionGate(StageRouting, RoutingCapacity, cfg.AdmissionPolicy),
		board:  NewRouteBoard(routes),
		turn:   turn,
		report: rep,
	}
}

// AssignRoute gives t the next unassigned route. order is the 1-based
// permit grant order, so route == routes[order-1].
func (s *RoutingStage) AssignRoute(ctx context.Context, t *Truck) (route string, order int, err error) {
	if err := t.advance(StateRouting); err != nil {
		return "", 0, err
	}

	adm, err := s.gate.Acquire(ctx)
	if err != nil {
		return "", 0, err
	}
	idx, route, err := s.board.Next()
	if err != nil {
		s.gate.Release()
		return "", 0, err
	}
	if idx+1 != adm.Order {
		s.gate.Release()
		return "", 0, invariantf("%s: route %d handed out on permit %d", t.ID, idx+1, adm.Order)
	}
	s.report.routeAssigned(t, adm.Order, route)
	s.gate.Release()

	if adm.Order == 1 {
		s.turn.Signal()
	}
	return route, adm.Order, nil
}
