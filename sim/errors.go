package sim

import (
	"errors"
	"fmt"
)

// ErrInvariantViolated marks a broken programming invariant: a missing ledger
// entry, an exhausted route board, an illegal truck state transition.
// Such errors are fatal to the run that produced them.
var ErrInvariantViolated = errors.New("invariant violated")

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolated, fmt.Sprintf(format, args...))
}
