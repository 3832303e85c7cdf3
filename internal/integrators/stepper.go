package integrators

import (
	"fmt"

	"github.com/kmdra/horizon/internal/ocp"
)

// Stepper advances a model one stage. Continuous schemes integrate
// Model.Dynamics as a derivative; Discrete applies it as the
// next-state map directly. Steppers may keep scratch buffers and are
// not safe for concurrent use.
type Stepper interface {
	Step(m ocp.Model, x ocp.State, u ocp.Control, dt float64) ocp.State
}

// ForMode returns the stepper matching a dynamics mode.
func ForMode(mode ocp.DynamicsMode) (Stepper, error) {
	switch mode {
	case ocp.ContinuousForwardEuler:
		return NewEuler(), nil
	case ocp.ContinuousModifiedEuler:
		return NewHeun(), nil
	case ocp.ContinuousRK4:
		return NewRK4(), nil
	case ocp.Discretized:
		return NewDiscrete(), nil
	default:
		return nil, fmt.Errorf("integrators: no stepper for mode %v", mode)
	}
}
