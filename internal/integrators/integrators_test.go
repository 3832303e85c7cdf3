package integrators

import (
	"fmt"
	"math"
	"testing"

	"github.com/kmdra/horizon/internal/ocp"
)

// oscillator is the undamped harmonic oscillator with a direct
// acceleration input: x'' = -x + u.
type oscillator struct {
	ocp.ZeroCost
}

func (oscillator) StateDim() int   { return 2 }
func (oscillator) ControlDim() int { return 1 }

func (oscillator) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	return ocp.State{x[1], -x[0] + u[0]}
}

// shiftMap is a discretized plant: the next state is x shifted by u.
type shiftMap struct {
	ocp.ZeroCost
}

func (shiftMap) StateDim() int   { return 2 }
func (shiftMap) ControlDim() int { return 1 }

func (shiftMap) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	return ocp.State{x[0] + u[0], x[1] - u[0]}
}

func TestEulerStepFormula(t *testing.T) {
	m := oscillator{}
	x := ocp.State{1.0, 2.0}
	u := ocp.Control{0.5}
	dt := 0.1

	got := NewEuler().Step(m, x, u, dt)

	// x + dt*f(x,u) with f = (2, -1+0.5)
	want := ocp.State{1.0 + 0.1*2.0, 2.0 + 0.1*(-0.5)}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHeunStepFormula(t *testing.T) {
	m := oscillator{}
	x := ocp.State{1.0, 0.0}
	u := ocp.Control{0.0}
	dt := 0.2

	got := NewHeun().Step(m, x, u, dt)

	// k1 = f(x), k2 = f(x + dt*k1), result = x + dt*(k1+k2)/2
	k1 := ocp.State{0.0, -1.0}
	mid := ocp.State{x[0] + dt*k1[0], x[1] + dt*k1[1]}
	k2 := ocp.State{mid[1], -mid[0]}
	want := ocp.State{
		x[0] + dt*0.5*(k1[0]+k2[0]),
		x[1] + dt*0.5*(k1[1]+k2[1]),
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRK4StepFormula(t *testing.T) {
	m := oscillator{}
	x := ocp.State{0.3, -0.2}
	u := ocp.Control{0.1}
	dt := 0.25

	got := NewRK4().Step(m, x, u, dt)

	f := func(s ocp.State) ocp.State { return ocp.State{s[1], -s[0] + u[0]} }
	add := func(s, k ocp.State, h float64) ocp.State {
		return ocp.State{s[0] + h*k[0], s[1] + h*k[1]}
	}
	k1 := f(x)
	k2 := f(add(x, k1, dt*0.5))
	k3 := f(add(x, k2, dt*0.5))
	k4 := f(add(x, k3, dt))
	want := ocp.State{
		x[0] + dt/6.0*(k1[0]+2*k2[0]+2*k3[0]+k4[0]),
		x[1] + dt/6.0*(k1[1]+2*k2[1]+2*k3[1]+k4[1]),
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDiscretePassThrough(t *testing.T) {
	m := shiftMap{}
	x := ocp.State{1.0, 4.0}
	u := ocp.Control{0.5}

	got := NewDiscrete().Step(m, x, u, 123.0)

	want := ocp.State{1.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRK4Accuracy(t *testing.T) {
	m := oscillator{}
	integ := NewRK4()

	x := ocp.State{1.0, 0.0}
	u := ocp.Control{0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(m, x, u, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-6 {
		t.Errorf("position error too large: got %.8f, expected %.8f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-6 {
		t.Errorf("velocity error too large: got %.8f, expected %.8f", x[1], expectedV)
	}
}

func TestRK45CoarseStep(t *testing.T) {
	m := oscillator{}
	integ := NewRK45()

	// One coarse stage; the adaptive substeps keep it accurate where
	// a single fixed step would drift.
	x := integ.Step(m, ocp.State{1.0, 0.0}, ocp.Control{0.0}, 1.0)

	if math.Abs(x[0]-math.Cos(1.0)) > 1e-5 {
		t.Errorf("position error too large: got %.8f, expected %.8f", x[0], math.Cos(1.0))
	}
	if math.Abs(x[1]+math.Sin(1.0)) > 1e-5 {
		t.Errorf("velocity error too large: got %.8f, expected %.8f", x[1], -math.Sin(1.0))
	}
}

func TestRK45AgreesWithRK4(t *testing.T) {
	m := oscillator{}
	rk4 := NewRK4()
	rk45 := NewRK45()
	u := ocp.Control{0.3}

	a := ocp.State{0.5, -0.1}
	b := a.Clone()
	dt := 0.001
	for i := 0; i < 50; i++ {
		a = rk4.Step(m, a, u, dt)
		b = rk45.Step(m, b, u, dt)
	}

	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-8 {
			t.Errorf("component %d: rk4 %v, rk45 %v", i, a[i], b[i])
		}
	}
}

func TestStepDoesNotMutateInputs(t *testing.T) {
	m := oscillator{}
	x := ocp.State{1.0, 2.0}
	u := ocp.Control{0.5}

	for _, st := range []Stepper{NewEuler(), NewHeun(), NewRK4(), NewRK45()} {
		st.Step(m, x, u, 0.1)
		if x[0] != 1.0 || x[1] != 2.0 || u[0] != 0.5 {
			t.Fatalf("%T mutated its inputs: x=%v u=%v", st, x, u)
		}
	}
}

func TestForMode(t *testing.T) {
	cases := []struct {
		mode ocp.DynamicsMode
		want string
	}{
		{ocp.ContinuousForwardEuler, "*integrators.Euler"},
		{ocp.ContinuousModifiedEuler, "*integrators.Heun"},
		{ocp.ContinuousRK4, "*integrators.RK4"},
		{ocp.Discretized, "*integrators.Discrete"},
	}
	for _, tc := range cases {
		got, err := ForMode(tc.mode)
		if err != nil {
			t.Fatalf("ForMode(%v) failed: %v", tc.mode, err)
		}
		if typ := fmt.Sprintf("%T", got); typ != tc.want {
			t.Errorf("ForMode(%v) = %s, want %s", tc.mode, typ, tc.want)
		}
	}
	if _, err := ForMode(ocp.DynamicsMode(42)); err == nil {
		t.Error("expected error for unknown mode")
	}
}
