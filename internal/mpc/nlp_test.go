package mpc

import (
	"errors"
	"math"
	"testing"

	"github.com/kmdra/horizon/internal/ocp"
)

// stubModel integrates each state component toward its paired input:
// dx_i = u[i mod nu]. Cost hooks are optional.
type stubModel struct {
	nx, nu int
	stage  func(x ocp.State, u ocp.Control) float64
	term   func(x ocp.State) float64
}

func (m stubModel) StateDim() int   { return m.nx }
func (m stubModel) ControlDim() int { return m.nu }

func (m stubModel) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	dx := make(ocp.State, m.nx)
	for i := range dx {
		dx[i] = u[i%m.nu]
	}
	return dx
}

func (m stubModel) StageCost(x ocp.State, u ocp.Control) float64 {
	if m.stage == nil {
		return 0
	}
	return m.stage(x, u)
}

func (m stubModel) TerminalCost(x ocp.State) float64 {
	if m.term == nil {
		return 0
	}
	return m.term(x)
}

func mustProblem(t *testing.T, mode ocp.DynamicsMode, m ocp.Model, horizon int, dt float64) *ocp.Problem {
	t.Helper()
	p, err := ocp.New(mode, m.StateDim(), m.ControlDim(), horizon, dt, m)
	if err != nil {
		t.Fatalf("ocp.New failed: %v", err)
	}
	return p
}

func TestTranscribeSizing(t *testing.T) {
	cases := []struct {
		nx, nu, horizon int
	}{
		{1, 1, 1},
		{2, 1, 5},
		{3, 2, 10},
		{4, 4, 7},
	}
	for _, tc := range cases {
		m := stubModel{nx: tc.nx, nu: tc.nu}
		p := mustProblem(t, ocp.ContinuousForwardEuler, m, tc.horizon, 0.1)
		nlp, err := Transcribe(p)
		if err != nil {
			t.Fatalf("Transcribe failed: %v", err)
		}

		wantVars := tc.horizon*(tc.nx+tc.nu) + tc.nx
		if nlp.NumVars != wantVars {
			t.Errorf("nx=%d nu=%d N=%d: NumVars = %d, want %d",
				tc.nx, tc.nu, tc.horizon, nlp.NumVars, wantVars)
		}
		if len(nlp.VarLower) != wantVars || len(nlp.VarUpper) != wantVars {
			t.Errorf("variable bound lengths %d/%d, want %d",
				len(nlp.VarLower), len(nlp.VarUpper), wantVars)
		}

		wantCons := tc.horizon * tc.nx
		if nlp.NumCons != wantCons {
			t.Errorf("nx=%d nu=%d N=%d: NumCons = %d, want %d",
				tc.nx, tc.nu, tc.horizon, nlp.NumCons, wantCons)
		}
		if len(nlp.ConLower) != wantCons || len(nlp.ConUpper) != wantCons {
			t.Errorf("constraint bound lengths %d/%d, want %d",
				len(nlp.ConLower), len(nlp.ConUpper), wantCons)
		}
	}
}

func TestTranscribeConstraintSizing(t *testing.T) {
	m := stubModel{nx: 2, nu: 1}
	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 4, 0.1)

	if err := p.AddConstraint(ocp.Equality, func(x ocp.State, u ocp.Control) []float64 {
		return []float64{x[0], x[1]}
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddConstraint(ocp.Inequality, func(x ocp.State, u ocp.Control) []float64 {
		return []float64{u[0] - 1}
	}); err != nil {
		t.Fatal(err)
	}

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	// Per stage: 2 defect rows, 2 equality rows, 1 inequality row.
	if want := 4 * (2 + 2 + 1); nlp.NumCons != want {
		t.Fatalf("NumCons = %d, want %d", nlp.NumCons, want)
	}

	for stage := 0; stage < 4; stage++ {
		base := stage * 5
		for r := base; r < base+4; r++ {
			if nlp.ConLower[r] != 0 || nlp.ConUpper[r] != 0 {
				t.Errorf("row %d: bounds [%v,%v], want [0,0]", r, nlp.ConLower[r], nlp.ConUpper[r])
			}
		}
		r := base + 4
		if !math.IsInf(nlp.ConLower[r], -1) || nlp.ConUpper[r] != 0 {
			t.Errorf("row %d: bounds [%v,%v], want [-inf,0]", r, nlp.ConLower[r], nlp.ConUpper[r])
		}
	}
}

func TestTranscribeBoundLayout(t *testing.T) {
	m := stubModel{nx: 1, nu: 1}
	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 3, 0.1)

	if err := p.SetStateBound([]float64{-5}, []float64{5}); err != nil {
		t.Fatal(err)
	}
	if err := p.SetInputBound([]float64{-2}, []float64{2}); err != nil {
		t.Fatal(err)
	}
	// Stage entry 1 governs the state after stage 1, i.e. X_2.
	if err := p.SetStateBound([]float64{-7}, []float64{7}, 1); err != nil {
		t.Fatal(err)
	}

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	// Layout: [X0, U0, X1, U1, X2, U2, X3].
	wantLower := []float64{0, -2, -5, -2, -7, -2, -5}
	wantUpper := []float64{0, 2, 5, 2, 7, 2, 5}
	for i := range wantLower {
		if nlp.VarLower[i] != wantLower[i] {
			t.Errorf("VarLower[%d] = %v, want %v", i, nlp.VarLower[i], wantLower[i])
		}
		if nlp.VarUpper[i] != wantUpper[i] {
			t.Errorf("VarUpper[%d] = %v, want %v", i, nlp.VarUpper[i], wantUpper[i])
		}
	}
}

func TestTranscribeDefectValues(t *testing.T) {
	m := stubModel{nx: 1, nu: 1}
	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 2, 0.1)

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	// w = [X0, U0, X1, U1, X2]
	w := []float64{1, 2, 3, 4, 5}
	out := make([]float64, nlp.NumCons)
	nlp.Constraints(w, out)

	// Euler: defect_i = X_i + dt*U_i - X_{i+1}.
	want := []float64{1 + 0.1*2 - 3, 3 + 0.1*4 - 5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("defect %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestTranscribeConstraintRows(t *testing.T) {
	m := stubModel{nx: 1, nu: 1}
	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 2, 0.1)

	// Registered constraints see the post-transition state with the
	// input that produced it.
	if err := p.AddConstraint(ocp.Equality, func(x ocp.State, u ocp.Control) []float64 {
		return []float64{10*x[0] + u[0]}
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddConstraint(ocp.Inequality, func(x ocp.State, u ocp.Control) []float64 {
		return []float64{x[0] - u[0]}
	}); err != nil {
		t.Fatal(err)
	}

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	w := []float64{1, 2, 3, 4, 5}
	out := make([]float64, nlp.NumCons)
	nlp.Constraints(w, out)

	want := []float64{
		1 + 0.1*2 - 3, // stage 0 defect
		10*3 + 2,      // stage 0 equality at (X1, U0)
		3 - 2,         // stage 0 inequality at (X1, U0)
		3 + 0.1*4 - 5, // stage 1 defect
		10*5 + 4,      // stage 1 equality at (X2, U1)
		5 - 4,         // stage 1 inequality at (X2, U1)
	}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("row %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestTranscribeObjective(t *testing.T) {
	m := stubModel{
		nx: 1, nu: 1,
		stage: func(x ocp.State, u ocp.Control) float64 { return x[0] + 10*u[0] },
		term:  func(x ocp.State) float64 { return 100 * x[0] },
	}
	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 2, 0.1)

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	w := []float64{1, 2, 3, 4, 5}
	got := nlp.Objective(w)
	want := (1 + 20.0) + (3 + 40.0) + 500.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Objective = %v, want %v", got, want)
	}
}

func TestTranscribeStepperDispatch(t *testing.T) {
	// dx = x makes the schemes disagree, exposing which one ran.
	p := mustProblem(t, ocp.ContinuousModifiedEuler, growthModel{}, 1, 0.1)
	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	w := []float64{2, 0, 0}
	out := make([]float64, 1)
	nlp.Constraints(w, out)

	// Heun on dx = x: x*(1 + dt + dt^2/2).
	want := 2 * (1 + 0.1 + 0.005)
	if math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("Heun defect = %v, want %v", out[0], want)
	}
}

func TestTranscribeSnapshotsBounds(t *testing.T) {
	m := stubModel{nx: 1, nu: 1}
	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 2, 0.1)
	if err := p.SetInputBound([]float64{-1}, []float64{1}); err != nil {
		t.Fatal(err)
	}

	nlp, err := Transcribe(p)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if err := p.SetInputBound([]float64{-9}, []float64{9}); err != nil {
		t.Fatal(err)
	}

	// U0 sits right after the X0 block.
	if nlp.VarUpper[1] != 1 {
		t.Errorf("transcribed bound changed after setter call: got %v, want 1", nlp.VarUpper[1])
	}
}

func TestTranscribeRejectsBadDynamics(t *testing.T) {
	p := mustProblem(t, ocp.ContinuousForwardEuler, shortModel{}, 2, 0.1)
	if _, err := Transcribe(p); !errors.Is(err, ErrTranscription) {
		t.Errorf("short dynamics: expected ErrTranscription, got %v", err)
	}
}

func TestTranscribeRejectsBadConstraints(t *testing.T) {
	m := stubModel{nx: 1, nu: 1}

	p := mustProblem(t, ocp.ContinuousForwardEuler, m, 2, 0.1)
	if err := p.AddConstraint(ocp.Equality, func(x ocp.State, u ocp.Control) []float64 {
		panic("boom")
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := Transcribe(p); !errors.Is(err, ErrTranscription) {
		t.Errorf("panicking constraint: expected ErrTranscription, got %v", err)
	}

	p = mustProblem(t, ocp.ContinuousForwardEuler, m, 2, 0.1)
	if err := p.AddConstraint(ocp.Inequality, func(x ocp.State, u ocp.Control) []float64 {
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := Transcribe(p); !errors.Is(err, ErrTranscription) {
		t.Errorf("empty constraint: expected ErrTranscription, got %v", err)
	}
}

// growthModel is dx = x, used to tell the integration schemes apart.
type growthModel struct {
	ocp.ZeroCost
}

func (growthModel) StateDim() int   { return 1 }
func (growthModel) ControlDim() int { return 1 }

func (growthModel) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	return ocp.State{x[0]}
}

// shortModel returns a derivative one component short.
type shortModel struct {
	ocp.ZeroCost
}

func (shortModel) StateDim() int   { return 2 }
func (shortModel) ControlDim() int { return 1 }

func (shortModel) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	return ocp.State{x[1]}
}
