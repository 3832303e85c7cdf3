package mpc

import (
	"math"
	"testing"

	"github.com/kmdra/horizon/internal/ocp"
)

// integrator1D is the single integrator dx = u with a quadratic
// terminal cost pulling x toward target.
type integrator1D struct {
	target float64
}

func (integrator1D) StateDim() int   { return 1 }
func (integrator1D) ControlDim() int { return 1 }

func (integrator1D) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	return ocp.State{u[0]}
}

func (integrator1D) StageCost(x ocp.State, u ocp.Control) float64 { return 0 }

func (m integrator1D) TerminalCost(x ocp.State) float64 {
	d := x[0] - m.target
	return d * d
}

// sumMap is a discretized plant x_next = x + u.
type sumMap struct {
	target float64
}

func (sumMap) StateDim() int   { return 1 }
func (sumMap) ControlDim() int { return 1 }

func (sumMap) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	return ocp.State{x[0] + u[0]}
}

func (sumMap) StageCost(x ocp.State, u ocp.Control) float64 { return 0 }

func (m sumMap) TerminalCost(x ocp.State) float64 {
	d := x[0] - m.target
	return d * d
}

func reachProblem(t *testing.T) *ocp.Problem {
	t.Helper()
	p, err := ocp.New(ocp.ContinuousForwardEuler, 1, 1, 5, 0.1, integrator1D{target: 1})
	if err != nil {
		t.Fatalf("ocp.New failed: %v", err)
	}
	if err := p.SetInputBound([]float64{-1}, []float64{1}); err != nil {
		t.Fatal(err)
	}
	return p
}

// The target sits beyond the reachable set, so every input saturates
// at its upper bound and the first input of the plan is 1.
func TestSLSQPSaturatedReach(t *testing.T) {
	ctrl, err := New(reachProblem(t), "slsqp", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	u, err := ctrl.Solve(ocp.State{0})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if math.Abs(u[0]-1) > 1e-4 {
		t.Fatalf("first input = %v, want 1", u[0])
	}

	// Apply the input and re-solve from the advanced state; the
	// warm-started plan should still saturate.
	u, err = ctrl.Solve(ocp.State{0.1})
	if err != nil {
		t.Fatalf("warm-started Solve failed: %v", err)
	}
	if math.Abs(u[0]-1) > 1e-4 {
		t.Fatalf("warm-started first input = %v, want 1", u[0])
	}

	states, _ := ctrl.Plan()
	if got := states[5][0]; math.Abs(got-0.6) > 1e-3 {
		t.Errorf("planned final state = %v, want 0.6", got)
	}
}

func TestSLSQPForwardDifferences(t *testing.T) {
	ctrl, err := New(reachProblem(t), "slsqp", FastOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	u, err := ctrl.Solve(ocp.State{0})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if math.Abs(u[0]-1) > 1e-3 {
		t.Fatalf("first input = %v, want 1", u[0])
	}
}

// An input equality pins every stage input regardless of the cost.
func TestSLSQPPathEquality(t *testing.T) {
	p := reachProblem(t)
	if err := p.AddConstraint(ocp.Equality, func(x ocp.State, u ocp.Control) []float64 {
		return []float64{u[0] - 0.5}
	}); err != nil {
		t.Fatal(err)
	}

	ctrl, err := New(p, "slsqp", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u, err := ctrl.Solve(ocp.State{0})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if math.Abs(u[0]-0.5) > 1e-6 {
		t.Fatalf("first input = %v, want 0.5", u[0])
	}
}

// Backend-level solve with a state cap: the plan presses against
// x <= 0.3 and the objective settles at (0.3-1)^2.
func TestSLSQPStateCap(t *testing.T) {
	p := reachProblem(t)
	if err := p.AddConstraint(ocp.Inequality, func(x ocp.State, u ocp.Control) []float64 {
		return []float64{x[0] - 0.3}
	}); err != nil {
		t.Fatal(err)
	}

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	solver, err := SLSQP{}.Prepare(nlp, nil)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	varLower := cloneFloats(nlp.VarLower)
	varUpper := cloneFloats(nlp.VarUpper)
	varLower[0], varUpper[0] = 0, 0 // pin X0

	sol, err := solver.Solve(&Request{
		Init:     make([]float64, nlp.NumVars),
		VarLower: varLower,
		VarUpper: varUpper,
		ConLower: nlp.ConLower,
		ConUpper: nlp.ConUpper,
		LamVar:   make([]float64, nlp.NumVars),
		LamCon:   make([]float64, nlp.NumCons),
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Status != Converged {
		t.Fatalf("status = %v (%s), want converged", sol.Status, sol.Message)
	}
	if sol.Iterations <= 0 {
		t.Errorf("iterations = %d, want > 0", sol.Iterations)
	}
	if math.Abs(sol.Objective-0.49) > 1e-3 {
		t.Errorf("objective = %v, want 0.49", sol.Objective)
	}
	for i := 0; i <= 5; i++ {
		if x := sol.Primal[i*2]; x > 0.3+1e-6 {
			t.Errorf("planned state %d = %v exceeds cap 0.3", i, x)
		}
	}
}

// Discretized mode: the map already contains the sampling period, and
// an unreachable target saturates the inputs.
func TestSLSQPDiscretized(t *testing.T) {
	p, err := ocp.New(ocp.Discretized, 1, 1, 3, 1.0, sumMap{target: 6})
	if err != nil {
		t.Fatalf("ocp.New failed: %v", err)
	}
	if err := p.SetInputBound([]float64{-1}, []float64{1}); err != nil {
		t.Fatal(err)
	}

	ctrl, err := New(p, "slsqp", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u, err := ctrl.Solve(ocp.State{0})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if math.Abs(u[0]-1) > 1e-4 {
		t.Fatalf("first input = %v, want 1", u[0])
	}
}
