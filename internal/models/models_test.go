package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/kmdra/horizon/internal/ocp"
)

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Dynamics(ocp.State{0, 0}, ocp.Control{0})

	if math.Abs(dx[0]) > 1e-10 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestPendulumGravity(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Dynamics(ocp.State{math.Pi / 2, 0}, ocp.Control{0})

	expectedAccel := -p.Gravity / p.Length
	if math.Abs(dx[1]-expectedAccel) > 1e-6 {
		t.Errorf("expected acceleration %f, got %f", expectedAccel, dx[1])
	}
}

func TestPendulumTorque(t *testing.T) {
	p := NewPendulum()

	dx := p.Dynamics(ocp.State{0, 0}, ocp.Control{2})

	expectedAccel := 2 / (p.Mass * p.Length * p.Length)
	if math.Abs(dx[1]-expectedAccel) > 1e-10 {
		t.Errorf("expected acceleration %f, got %f", expectedAccel, dx[1])
	}
}

func TestPendulumCosts(t *testing.T) {
	p := NewPendulum()

	if got := p.StageCost(ocp.State{0, 0}, ocp.Control{0}); got != 0 {
		t.Errorf("stage cost at origin = %f, want 0", got)
	}
	if got := p.TerminalCost(ocp.State{0, 0}); got != 0 {
		t.Errorf("terminal cost at origin = %f, want 0", got)
	}
	if got := p.StageCost(ocp.State{0.5, 0}, ocp.Control{0}); got <= 0 {
		t.Errorf("stage cost away from origin = %f, want > 0", got)
	}
}

func TestPendulumProblem(t *testing.T) {
	p := NewPendulum()
	prob, err := p.Problem(ocp.ContinuousRK4, 20, 0.05)
	if err != nil {
		t.Fatalf("Problem failed: %v", err)
	}

	if prob.StateDim() != 2 || prob.ControlDim() != 1 || prob.Horizon() != 20 {
		t.Errorf("problem dims %d/%d/%d, want 2/1/20",
			prob.StateDim(), prob.ControlDim(), prob.Horizon())
	}
	for i, b := range prob.InputBounds() {
		if b.Lower[0] != -p.MaxTorque || b.Upper[0] != p.MaxTorque {
			t.Errorf("stage %d torque bounds [%v,%v], want ±%v", i, b.Lower[0], b.Upper[0], p.MaxTorque)
		}
	}
}

func TestCartPoleUprightEquilibrium(t *testing.T) {
	c := NewCartPole()

	dx := c.Dynamics(ocp.State{0, 0, 0, 0}, ocp.Control{0})
	for i, v := range dx {
		if math.Abs(v) > 1e-10 {
			t.Errorf("component %d = %f at upright rest, want 0", i, v)
		}
	}
}

func TestCartPoleForceResponse(t *testing.T) {
	c := NewCartPole()

	dx := c.Dynamics(ocp.State{0, 0, 0, 0}, ocp.Control{1})

	if dx[1] <= 0 {
		t.Errorf("cart acceleration %f for positive force, want > 0", dx[1])
	}
	// Pushing the cart tips the pole backward.
	if dx[3] >= 0 {
		t.Errorf("pole acceleration %f for positive force, want < 0", dx[3])
	}
}

func TestCartPoleGravityTipsPole(t *testing.T) {
	c := NewCartPole()

	dx := c.Dynamics(ocp.State{0, 0, 0.1, 0}, ocp.Control{0})
	if dx[3] <= 0 {
		t.Errorf("pole acceleration %f for positive lean, want > 0", dx[3])
	}
}

func TestCartPoleProblemBounds(t *testing.T) {
	c := NewCartPole()
	prob, err := c.Problem(ocp.ContinuousRK4, 25, 0.04)
	if err != nil {
		t.Fatalf("Problem failed: %v", err)
	}

	b := prob.StateBounds()[0]
	if b.Lower[0] != -c.TrackLimit || b.Upper[0] != c.TrackLimit {
		t.Errorf("track bounds [%v,%v], want ±%v", b.Lower[0], b.Upper[0], c.TrackLimit)
	}
	if !math.IsInf(b.Lower[2], -1) || !math.IsInf(b.Upper[2], 1) {
		t.Errorf("angle should stay unbounded, got [%v,%v]", b.Lower[2], b.Upper[2])
	}
	ub := prob.InputBounds()[0]
	if ub.Lower[0] != -c.MaxForce || ub.Upper[0] != c.MaxForce {
		t.Errorf("force bounds [%v,%v], want ±%v", ub.Lower[0], ub.Upper[0], c.MaxForce)
	}
}

func TestDroneHover(t *testing.T) {
	d := NewDrone()
	hover := d.HoverThrust()

	dx := d.Dynamics(ocp.State{0, 0, 0, 0, 0, 0}, ocp.Control{hover, hover})
	for i, v := range dx {
		if math.Abs(v) > 1e-10 {
			t.Errorf("component %d = %f at hover, want 0", i, v)
		}
	}
}

func TestDroneDifferentialThrust(t *testing.T) {
	d := NewDrone()
	hover := d.HoverThrust()

	// More thrust on the right rotor torques the drone counterclockwise.
	dx := d.Dynamics(ocp.State{0, 0, 0, 0, 0, 0}, ocp.Control{hover - 0.5, hover + 0.5})
	if dx[5] <= 0 {
		t.Errorf("angular acceleration %f, want > 0", dx[5])
	}

	dx = d.Dynamics(ocp.State{0, 0, 0, 0, 0, 0}, ocp.Control{hover + 1, hover + 1})
	if dx[4] <= 0 {
		t.Errorf("vertical acceleration %f for excess thrust, want > 0", dx[4])
	}
}

func TestDroneProblemBounds(t *testing.T) {
	d := NewDrone()
	prob, err := d.Problem(ocp.ContinuousRK4, 15, 0.05)
	if err != nil {
		t.Fatalf("Problem failed: %v", err)
	}

	b := prob.InputBounds()[0]
	for i := 0; i < 2; i++ {
		if b.Lower[i] != 0 || b.Upper[i] != d.MaxThrust {
			t.Errorf("thrust %d bounds [%v,%v], want [0,%v]", i, b.Lower[i], b.Upper[i], d.MaxThrust)
		}
	}
}

func TestDoubleIntegratorMap(t *testing.T) {
	d := NewDoubleIntegrator(0.1)

	next := d.Dynamics(ocp.State{1, 2}, ocp.Control{3})

	want := ocp.State{1 + 0.1*2 + 0.5*0.01*3, 2 + 0.1*3}
	for i := range want {
		if math.Abs(next[i]-want[i]) > 1e-12 {
			t.Errorf("component %d = %v, want %v", i, next[i], want[i])
		}
	}
}

func TestDoubleIntegratorProblemIsDiscretized(t *testing.T) {
	d := NewDoubleIntegrator(0.1)
	prob, err := d.Problem(10)
	if err != nil {
		t.Fatalf("Problem failed: %v", err)
	}
	if prob.Mode() != ocp.Discretized {
		t.Errorf("mode = %v, want discretized", prob.Mode())
	}
}

func TestLinearDynamicsAndCosts(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0, 1, -2, -0.5})
	b := mat.NewDense(2, 1, []float64{0, 1})
	q := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	r := mat.NewSymDense(1, []float64{2})
	qn := mat.NewSymDense(2, []float64{3, 0, 0, 3})

	l, err := NewLinear(a, b, q, r, qn)
	if err != nil {
		t.Fatalf("NewLinear failed: %v", err)
	}

	dx := l.Dynamics(ocp.State{1, 2}, ocp.Control{3})
	want := ocp.State{2, -2 - 1 + 3}
	for i := range want {
		if math.Abs(dx[i]-want[i]) > 1e-12 {
			t.Errorf("dx[%d] = %v, want %v", i, dx[i], want[i])
		}
	}

	if got := l.StageCost(ocp.State{1, 2}, ocp.Control{3}); math.Abs(got-(5+18)) > 1e-12 {
		t.Errorf("stage cost = %v, want 23", got)
	}
	if got := l.TerminalCost(ocp.State{1, 2}); math.Abs(got-15) > 1e-12 {
		t.Errorf("terminal cost = %v, want 15", got)
	}
}

func TestLinearValidation(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	b := mat.NewDense(2, 1, nil)
	q := mat.NewSymDense(2, nil)
	r := mat.NewSymDense(1, nil)

	if _, err := NewLinear(a, b, q, r, q); err == nil {
		t.Error("expected error for non-square A")
	}

	a = mat.NewDense(2, 2, nil)
	badB := mat.NewDense(3, 1, nil)
	if _, err := NewLinear(a, badB, q, r, q); err == nil {
		t.Error("expected error for mismatched B")
	}

	badR := mat.NewSymDense(2, nil)
	if _, err := NewLinear(a, b, q, badR, q); err == nil {
		t.Error("expected error for mismatched R")
	}
}

func TestBuildScenarios(t *testing.T) {
	for _, name := range Names() {
		sc, err := Build(name, ocp.ContinuousRK4, 10, 0.05)
		if err != nil {
			t.Fatalf("Build(%q) failed: %v", name, err)
		}
		if sc.Problem == nil {
			t.Fatalf("Build(%q) returned nil problem", name)
		}
		if len(sc.Init) != sc.Problem.StateDim() {
			t.Errorf("%s: init state has %d components, want %d",
				name, len(sc.Init), sc.Problem.StateDim())
		}
		if len(sc.Target) != sc.Problem.StateDim() {
			t.Errorf("%s: target has %d components, want %d",
				name, len(sc.Target), sc.Problem.StateDim())
		}
		if !sc.Init.IsValid() {
			t.Errorf("%s: invalid init state %v", name, sc.Init)
		}
	}

	if _, err := Build("lorenz", ocp.ContinuousRK4, 10, 0.05); err == nil {
		t.Error("expected error for unknown model")
	}
}
