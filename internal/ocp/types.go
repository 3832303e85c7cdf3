package ocp

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

type Model interface {
	StateDim() int
	ControlDim() int
	Dynamics(x State, u Control) State
	StageCost(x State, u Control) float64
	TerminalCost(x State) float64
}

// ZeroCost provides zero stage and terminal costs. Models that only
// define dynamics embed it and override nothing.
type ZeroCost struct{}

func (ZeroCost) StageCost(State, Control) float64 { return 0 }

func (ZeroCost) TerminalCost(State) float64 { return 0 }

// DynamicsMode selects how Model.Dynamics is interpreted when the
// problem is transcribed.
type DynamicsMode int

const (
	// ContinuousForwardEuler treats Dynamics as a derivative and
	// advances it with one explicit Euler step per stage.
	ContinuousForwardEuler DynamicsMode = iota
	// ContinuousModifiedEuler uses Heun's two-evaluation scheme.
	ContinuousModifiedEuler
	// ContinuousRK4 uses the classical fourth-order Runge-Kutta scheme.
	ContinuousRK4
	// Discretized treats Dynamics as the next-state map itself.
	Discretized
)

func (m DynamicsMode) String() string {
	switch m {
	case ContinuousForwardEuler:
		return "euler"
	case ContinuousModifiedEuler:
		return "heun"
	case ContinuousRK4:
		return "rk4"
	case Discretized:
		return "discrete"
	default:
		return "unknown"
	}
}

// ParseMode maps the config spelling of a dynamics mode back to its
// constant. Accepted names are euler, heun, rk4 and discrete.
func ParseMode(name string) (DynamicsMode, error) {
	switch name {
	case "euler":
		return ContinuousForwardEuler, nil
	case "heun":
		return ContinuousModifiedEuler, nil
	case "rk4":
		return ContinuousRK4, nil
	case "discrete":
		return Discretized, nil
	default:
		return 0, &InvalidProblemError{Detail: "unknown dynamics mode " + name}
	}
}

type ConstraintKind int

const (
	Equality ConstraintKind = iota
	Inequality
)

func (k ConstraintKind) String() string {
	switch k {
	case Equality:
		return "equality"
	case Inequality:
		return "inequality"
	default:
		return "unknown"
	}
}

// Constraint evaluates a vector-valued path constraint at a stage.
// The transcription calls it with the state reached after the stage
// transition and the input applied during it. The returned length
// must not vary between calls.
type Constraint func(x State, u Control) []float64

// Bound holds elementwise lower and upper limits for one stage.
type Bound struct {
	Lower []float64
	Upper []float64
}

func (b Bound) Clone() Bound {
	c := Bound{
		Lower: make([]float64, len(b.Lower)),
		Upper: make([]float64, len(b.Upper)),
	}
	copy(c.Lower, b.Lower)
	copy(c.Upper, b.Upper)
	return c
}

func unbounded(dim int) Bound {
	b := Bound{
		Lower: make([]float64, dim),
		Upper: make([]float64, dim),
	}
	for i := 0; i < dim; i++ {
		b.Lower[i] = math.Inf(-1)
		b.Upper[i] = math.Inf(1)
	}
	return b
}
