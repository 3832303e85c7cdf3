package ocp

import "fmt"

// Problem is a finite-horizon optimal control problem: a plant model
// plus per-stage input/state bounds and registered path constraints.
// It is pure data; transcription into a solvable program happens in
// the mpc package.
type Problem struct {
	mode    DynamicsMode
	nx      int
	nu      int
	horizon int
	dt      float64
	model   Model

	inputBounds []Bound // entry i applies to U_i
	stateBounds []Bound // entry i applies to X_{i+1}

	equalities   []Constraint
	inequalities []Constraint
}

// New builds a problem over the given horizon. All stages start
// unbounded; dt is the stage duration used by the continuous modes
// and the sampling period reported for discretized ones.
func New(mode DynamicsMode, stateDim, controlDim, horizon int, dt float64, model Model) (*Problem, error) {
	switch {
	case stateDim <= 0:
		return nil, &InvalidProblemError{Detail: fmt.Sprintf("state dimension %d, want > 0", stateDim)}
	case controlDim <= 0:
		return nil, &InvalidProblemError{Detail: fmt.Sprintf("control dimension %d, want > 0", controlDim)}
	case horizon <= 0:
		return nil, &InvalidProblemError{Detail: fmt.Sprintf("horizon %d, want > 0", horizon)}
	case dt <= 0:
		return nil, &InvalidProblemError{Detail: fmt.Sprintf("dt %g, want > 0", dt)}
	case model == nil:
		return nil, &InvalidProblemError{Detail: "nil model"}
	}
	switch mode {
	case ContinuousForwardEuler, ContinuousModifiedEuler, ContinuousRK4, Discretized:
	default:
		return nil, &InvalidProblemError{Detail: fmt.Sprintf("unknown dynamics mode %d", mode)}
	}
	if model.StateDim() != stateDim || model.ControlDim() != controlDim {
		return nil, &InvalidProblemError{Detail: fmt.Sprintf(
			"model reports %dx%d, problem declares %dx%d",
			model.StateDim(), model.ControlDim(), stateDim, controlDim)}
	}

	p := &Problem{
		mode:        mode,
		nx:          stateDim,
		nu:          controlDim,
		horizon:     horizon,
		dt:          dt,
		model:       model,
		inputBounds: make([]Bound, horizon),
		stateBounds: make([]Bound, horizon),
	}
	for i := 0; i < horizon; i++ {
		p.inputBounds[i] = unbounded(controlDim)
		p.stateBounds[i] = unbounded(stateDim)
	}
	return p, nil
}

func (p *Problem) Mode() DynamicsMode { return p.mode }

func (p *Problem) StateDim() int { return p.nx }

func (p *Problem) ControlDim() int { return p.nu }

func (p *Problem) Horizon() int { return p.horizon }

func (p *Problem) Dt() float64 { return p.dt }

func (p *Problem) Model() Model { return p.model }

// InputBounds returns the per-stage input bounds. The slice is shared
// with the problem; treat it as read-only.
func (p *Problem) InputBounds() []Bound { return p.inputBounds }

// StateBounds returns the per-stage state bounds. Entry k applies to
// the state reached after stage k.
func (p *Problem) StateBounds() []Bound { return p.stateBounds }

func (p *Problem) Equalities() []Constraint { return p.equalities }

func (p *Problem) Inequalities() []Constraint { return p.inequalities }

// SetInputBound writes both input limits over the stages selected by
// span: none for the whole horizon, one for a single stage, two for
// the half-open range [k1,k2).
func (p *Problem) SetInputBound(lower, upper []float64, span ...int) error {
	if err := p.checkDim(lower, p.nu, "input lower bound"); err != nil {
		return err
	}
	if err := p.checkDim(upper, p.nu, "input upper bound"); err != nil {
		return err
	}
	start, end, err := p.resolveSpan(span)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		p.inputBounds[i] = Bound{Lower: cloneVec(lower), Upper: cloneVec(upper)}
	}
	return nil
}

// SetInputLowerBound writes only the lower input limit over the
// selected stages.
func (p *Problem) SetInputLowerBound(lower []float64, span ...int) error {
	if err := p.checkDim(lower, p.nu, "input lower bound"); err != nil {
		return err
	}
	start, end, err := p.resolveSpan(span)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		p.inputBounds[i].Lower = cloneVec(lower)
	}
	return nil
}

// SetInputUpperBound writes only the upper input limit over the
// selected stages.
func (p *Problem) SetInputUpperBound(upper []float64, span ...int) error {
	if err := p.checkDim(upper, p.nu, "input upper bound"); err != nil {
		return err
	}
	start, end, err := p.resolveSpan(span)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		p.inputBounds[i].Upper = cloneVec(upper)
	}
	return nil
}

// SetStateBound writes both state limits over the selected stages.
// Entry k constrains the state reached after stage k, so the initial
// state is never affected.
func (p *Problem) SetStateBound(lower, upper []float64, span ...int) error {
	if err := p.checkDim(lower, p.nx, "state lower bound"); err != nil {
		return err
	}
	if err := p.checkDim(upper, p.nx, "state upper bound"); err != nil {
		return err
	}
	start, end, err := p.resolveSpan(span)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		p.stateBounds[i] = Bound{Lower: cloneVec(lower), Upper: cloneVec(upper)}
	}
	return nil
}

// SetStateLowerBound writes only the lower state limit over the
// selected stages.
func (p *Problem) SetStateLowerBound(lower []float64, span ...int) error {
	if err := p.checkDim(lower, p.nx, "state lower bound"); err != nil {
		return err
	}
	start, end, err := p.resolveSpan(span)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		p.stateBounds[i].Lower = cloneVec(lower)
	}
	return nil
}

// SetStateUpperBound writes only the upper state limit over the
// selected stages.
func (p *Problem) SetStateUpperBound(upper []float64, span ...int) error {
	if err := p.checkDim(upper, p.nx, "state upper bound"); err != nil {
		return err
	}
	start, end, err := p.resolveSpan(span)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		p.stateBounds[i].Upper = cloneVec(upper)
	}
	return nil
}

// AddConstraint registers a path constraint enforced at every stage.
// Equalities are driven to zero, inequalities held at or below zero.
func (p *Problem) AddConstraint(kind ConstraintKind, fn Constraint) error {
	if fn == nil {
		return &InvalidProblemError{Detail: "nil constraint function"}
	}
	switch kind {
	case Equality:
		p.equalities = append(p.equalities, fn)
	case Inequality:
		p.inequalities = append(p.inequalities, fn)
	default:
		return &InvalidProblemError{Detail: fmt.Sprintf("unknown constraint kind %d", kind)}
	}
	return nil
}

func (p *Problem) checkDim(v []float64, want int, what string) error {
	if len(v) != want {
		return fmt.Errorf("%w: %s has %d components, want %d", ErrDimension, what, len(v), want)
	}
	return nil
}

// resolveSpan turns the variadic stage selector into [start,end).
func (p *Problem) resolveSpan(span []int) (int, int, error) {
	switch len(span) {
	case 0:
		return 0, p.horizon, nil
	case 1:
		k := span[0]
		if k < 0 || k >= p.horizon {
			return 0, 0, fmt.Errorf("%w: stage %d, horizon %d", ErrStageRange, k, p.horizon)
		}
		return k, k + 1, nil
	case 2:
		start, end := span[0], span[1]
		if start < 0 || end > p.horizon || start > end {
			return 0, 0, fmt.Errorf("%w: range [%d,%d), horizon %d", ErrStageRange, start, end, p.horizon)
		}
		return start, end, nil
	default:
		return 0, 0, fmt.Errorf("%w: got %d stage arguments, want at most 2", ErrStageRange, len(span))
	}
}

func cloneVec(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
