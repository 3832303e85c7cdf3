package sim

import "github.com/kmdra/horizon/internal/ocp"

// Controller closes the loop: given the measured state and the
// current time it produces the input to apply for the next stage.
// Implementations may carry state between calls and may fail (a
// receding-horizon controller whose solve diverged, for instance);
// a failed Compute aborts the run.
type Controller interface {
	Compute(x ocp.State, t float64) (ocp.Control, error)
}

// Metric accumulates a closed-loop statistic over a run.
type Metric interface {
	Name() string
	Observe(x ocp.State, u ocp.Control, t float64)
	Value() float64
	Reset()
}

type Config struct {
	Dt       float64
	Duration float64

	// ValidateState aborts the run when the plant state stops being
	// finite.
	ValidateState bool
}

type Result struct {
	States   []ocp.State
	Controls []ocp.Control
	Times    []float64
	Metrics  map[string]float64

	StepsTaken int
}
