package sim

import (
	"errors"
	"fmt"
)

var ErrUnstable = errors.New("sim: state diverged")

// UnstableError reports where a run produced a non-finite state.
type UnstableError struct {
	Time float64
	Step int
}

func (e *UnstableError) Error() string {
	return fmt.Sprintf("sim: state not finite at t=%.4f (step %d)", e.Time, e.Step)
}

func (e *UnstableError) Unwrap() error {
	return ErrUnstable
}
