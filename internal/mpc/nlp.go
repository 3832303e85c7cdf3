package mpc

import (
	"fmt"
	"math"

	"github.com/kmdra/horizon/internal/integrators"
	"github.com/kmdra/horizon/internal/ocp"
)

// NLP is a transcribed problem: a dense decision vector with box
// bounds, an objective closure and a stacked constraint closure with
// row bounds. Backends treat it as read-only except for the first
// state block of VarLower/VarUpper, which the receding-horizon layer
// rewrites before every solve.
type NLP struct {
	NumVars int
	NumCons int

	// Objective evaluates the summed stage costs plus the terminal
	// cost at a decision vector of length NumVars.
	Objective func(w []float64) float64

	// Constraints writes every constraint row at w into out, which
	// must have length NumCons. Rows are grouped per stage: the
	// shooting defects first, then registered equalities, then
	// inequalities, all in registration order.
	Constraints func(w, out []float64)

	VarLower []float64
	VarUpper []float64
	ConLower []float64
	ConUpper []float64
}

// Transcribe flattens a problem into an [NLP] with multiple shooting.
// The decision vector interleaves states and inputs,
// [X_0, U_0, ..., U_{N-1}, X_N], so it has N*(nx+nu)+nx entries.
// Stage bounds are snapshotted here; later setter calls on the
// problem do not reach an already transcribed program.
//
// Constraint row counts are discovered by evaluating each registered
// constraint once at the origin, so constraints must be total there.
// The first state block is bounded to zero as a placeholder; the
// receding-horizon layer replaces it with the measured state.
func Transcribe(p *ocp.Problem) (*NLP, error) {
	step, err := integrators.ForMode(p.Mode())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	nx := p.StateDim()
	nu := p.ControlDim()
	horizon := p.Horizon()
	dt := p.Dt()
	model := p.Model()

	if err := probeDynamics(model, nx, nu); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	eqs := p.Equalities()
	ineqs := p.Inequalities()
	eqDims, err := probeConstraints(eqs, nx, nu, "equality")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	ineqDims, err := probeConstraints(ineqs, nx, nu, "inequality")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	rowsPerStage := nx
	for _, d := range eqDims {
		rowsPerStage += d
	}
	for _, d := range ineqDims {
		rowsPerStage += d
	}
	numVars := horizon*(nx+nu) + nx
	numCons := horizon * rowsPerStage

	varLower := make([]float64, 0, numVars)
	varUpper := make([]float64, 0, numVars)
	conLower := make([]float64, 0, numCons)
	conUpper := make([]float64, 0, numCons)

	stateBounds := p.StateBounds()
	inputBounds := p.InputBounds()
	negInf := math.Inf(-1)

	for i := 0; i < horizon; i++ {
		if i == 0 {
			// Placeholder; Solve pins X_0 to the measurement.
			varLower = appendZeros(varLower, nx)
			varUpper = appendZeros(varUpper, nx)
		} else {
			varLower = append(varLower, stateBounds[i-1].Lower...)
			varUpper = append(varUpper, stateBounds[i-1].Upper...)
		}
		varLower = append(varLower, inputBounds[i].Lower...)
		varUpper = append(varUpper, inputBounds[i].Upper...)

		conLower = appendZeros(conLower, nx)
		conUpper = appendZeros(conUpper, nx)
		for _, d := range eqDims {
			conLower = appendZeros(conLower, d)
			conUpper = appendZeros(conUpper, d)
		}
		for _, d := range ineqDims {
			for l := 0; l < d; l++ {
				conLower = append(conLower, negInf)
				conUpper = append(conUpper, 0)
			}
		}
	}
	varLower = append(varLower, stateBounds[horizon-1].Lower...)
	varUpper = append(varUpper, stateBounds[horizon-1].Upper...)

	offX := func(i int) int { return i * (nx + nu) }
	offU := func(i int) int { return i*(nx+nu) + nx }

	objective := func(w []float64) float64 {
		cost := 0.0
		for i := 0; i < horizon; i++ {
			xi := ocp.State(w[offX(i) : offX(i)+nx])
			ui := ocp.Control(w[offU(i) : offU(i)+nu])
			cost += model.StageCost(xi, ui)
		}
		return cost + model.TerminalCost(ocp.State(w[offX(horizon):offX(horizon)+nx]))
	}

	constraints := func(w, out []float64) {
		k := 0
		for i := 0; i < horizon; i++ {
			xi := ocp.State(w[offX(i) : offX(i)+nx])
			ui := ocp.Control(w[offU(i) : offU(i)+nu])
			xNext := ocp.State(w[offX(i+1) : offX(i+1)+nx])

			stepped := step.Step(model, xi, ui, dt)
			for l := 0; l < nx; l++ {
				out[k] = stepped[l] - xNext[l]
				k++
			}
			for c, fn := range eqs {
				k += fillRows(out[k:], fn(xNext, ui), eqDims[c], "equality", c)
			}
			for c, fn := range ineqs {
				k += fillRows(out[k:], fn(xNext, ui), ineqDims[c], "inequality", c)
			}
		}
	}

	return &NLP{
		NumVars:     numVars,
		NumCons:     numCons,
		Objective:   objective,
		Constraints: constraints,
		VarLower:    varLower,
		VarUpper:    varUpper,
		ConLower:    conLower,
		ConUpper:    conUpper,
	}, nil
}

func probeDynamics(m ocp.Model, nx, nu int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dynamics panicked at origin probe: %v", r)
		}
	}()
	out := m.Dynamics(make(ocp.State, nx), make(ocp.Control, nu))
	if len(out) != nx {
		return fmt.Errorf("dynamics returned %d components, want %d", len(out), nx)
	}
	return nil
}

// probeConstraints discovers row counts by evaluating each constraint
// once at the origin.
func probeConstraints(cons []ocp.Constraint, nx, nu int, kind string) ([]int, error) {
	dims := make([]int, len(cons))
	x := make(ocp.State, nx)
	u := make(ocp.Control, nu)
	for i, fn := range cons {
		vals, err := probeOne(fn, x, u)
		if err != nil {
			return nil, fmt.Errorf("%s constraint %d: %v", kind, i, err)
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%s constraint %d returned no values", kind, i)
		}
		dims[i] = len(vals)
	}
	return dims, nil
}

func probeOne(fn ocp.Constraint, x ocp.State, u ocp.Control) (vals []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked at origin probe: %v", r)
		}
	}()
	return fn(x, u), nil
}

func fillRows(dst, vals []float64, want int, kind string, idx int) int {
	if len(vals) != want {
		panic(fmt.Sprintf("mpc: %s constraint %d returned %d values, want %d", kind, idx, len(vals), want))
	}
	copy(dst, vals)
	return want
}

func appendZeros(v []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		v = append(v, 0)
	}
	return v
}
