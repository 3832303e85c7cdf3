package mpc

import (
	"fmt"

	"github.com/kmdra/horizon/internal/ocp"
)

// MPC re-solves one transcribed problem from successive measured
// states, warm-starting each solve from the previous answer. Not safe
// for concurrent use; give each control loop its own instance.
type MPC struct {
	prob   *ocp.Problem
	nlp    *NLP
	solver Solver
	nx, nu int

	w0     []float64
	lamVar []float64
	lamCon []float64
}

// New transcribes the problem and prepares the named backend with the
// given options.
func New(p *ocp.Problem, backend string, opts Options) (*MPC, error) {
	b, err := lookupBackend(backend)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(p, b, opts)
}

// NewWithBackend is New for an unregistered backend instance.
func NewWithBackend(p *ocp.Problem, b Backend, opts Options) (*MPC, error) {
	nlp, err := Transcribe(p)
	if err != nil {
		return nil, err
	}
	solver, err := b.Prepare(nlp, opts)
	if err != nil {
		return nil, fmt.Errorf("mpc: prepare backend %s: %w", b.Name(), err)
	}
	return &MPC{
		prob:   p,
		nlp:    nlp,
		solver: solver,
		nx:     p.StateDim(),
		nu:     p.ControlDim(),
		w0:     make([]float64, nlp.NumVars),
		lamVar: make([]float64, nlp.NumVars),
		lamCon: make([]float64, nlp.NumCons),
	}, nil
}

// Solve runs one receding-horizon iteration from the measured state:
// it pins the first state block to x0 through coincident variable
// bounds, solves warm-started from the cached primal and multipliers,
// refreshes the caches and returns a copy of the first planned input.
//
// On a non-converged solve it returns a nil input and a [*SolveError];
// the caches are refreshed anyway, so the failed iterate still seeds
// the next cycle. The caller decides the fallback, typically holding
// the previous input.
func (m *MPC) Solve(x0 ocp.State) (ocp.Control, error) {
	if len(x0) != m.nx {
		return nil, fmt.Errorf("%w: measured state has %d components, want %d", ocp.ErrDimension, len(x0), m.nx)
	}

	copy(m.nlp.VarLower[:m.nx], x0)
	copy(m.nlp.VarUpper[:m.nx], x0)

	sol, err := m.solver.Solve(&Request{
		Init:     m.w0,
		VarLower: m.nlp.VarLower,
		VarUpper: m.nlp.VarUpper,
		ConLower: m.nlp.ConLower,
		ConUpper: m.nlp.ConUpper,
		LamVar:   m.lamVar,
		LamCon:   m.lamCon,
	})
	if err != nil {
		return nil, fmt.Errorf("mpc: backend: %w", err)
	}
	if len(sol.Primal) != m.nlp.NumVars {
		return nil, fmt.Errorf("mpc: backend returned %d primal entries, want %d", len(sol.Primal), m.nlp.NumVars)
	}

	copy(m.w0, sol.Primal)
	if len(sol.LamVar) == len(m.lamVar) {
		copy(m.lamVar, sol.LamVar)
	}
	if len(sol.LamCon) == len(m.lamCon) {
		copy(m.lamCon, sol.LamCon)
	}

	if sol.Status != Converged {
		return nil, &SolveError{Status: sol.Status, Iterations: sol.Iterations, Message: sol.Message}
	}

	u := make(ocp.Control, m.nu)
	copy(u, m.w0[m.nx:m.nx+m.nu])
	return u, nil
}

// Compute adapts Solve to the simulation controller signature. The
// time argument is unused; the plan always starts at the measurement.
func (m *MPC) Compute(x ocp.State, t float64) (ocp.Control, error) {
	return m.Solve(x)
}

// Plan decodes the cached decision vector into the per-stage states
// and inputs of the last plan. Fresh slices; safe to keep.
func (m *MPC) Plan() ([]ocp.State, []ocp.Control) {
	horizon := m.prob.Horizon()
	stride := m.nx + m.nu

	states := make([]ocp.State, horizon+1)
	for i := 0; i <= horizon; i++ {
		x := make(ocp.State, m.nx)
		copy(x, m.w0[i*stride:i*stride+m.nx])
		states[i] = x
	}
	controls := make([]ocp.Control, horizon)
	for i := 0; i < horizon; i++ {
		u := make(ocp.Control, m.nu)
		copy(u, m.w0[i*stride+m.nx:(i+1)*stride])
		controls[i] = u
	}
	return states, controls
}

// Reset zeroes the warm-start caches, e.g. after a setpoint jump that
// makes the previous plan misleading.
func (m *MPC) Reset() {
	for i := range m.w0 {
		m.w0[i] = 0
	}
	for i := range m.lamVar {
		m.lamVar[i] = 0
	}
	for i := range m.lamCon {
		m.lamCon[i] = 0
	}
}

func (m *MPC) Problem() *ocp.Problem { return m.prob }
