package sim

import "context"

// TurnSignal is a single-slot hand-off: Signal sets it, and exactly one Wait
// consumes the set and proceeds. Signalling an already-set turn is a no-op.
type TurnSignal struct {
	ch chan struct{}
}

// NewTurnSignal returns an unset TurnSignal.
func NewTurnSignal() *TurnSignal {
	return &TurnSignal{ch: make(chan struct{}, 1)}
}

// Signal sets the turn without blocking.
func (s *TurnSignal) Signal() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the turn is set, consuming it.
func (s *TurnSignal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
