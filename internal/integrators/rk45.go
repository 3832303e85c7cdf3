package integrators

import (
	"math"

	"github.com/kmdra/horizon/internal/ocp"
)

// Dormand-Prince coefficients (RK45)
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 covers each stage with adaptive Dormand-Prince substeps, so a
// single Step is accurate to Tol even when the stage interval is
// coarse. It serves as a plant-side stepper; the transcription sticks
// to the fixed-step schemes.
type RK45 struct {
	Tol float64

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		Tol:      1e-6,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(m ocp.Model, x ocp.State, u ocp.Control, dt float64) ocp.State {
	cur := x.Clone()
	remaining := dt
	h := dt

	// Substeps never shrink below 1e-9 of the stage; at the floor the
	// attempt is accepted regardless of the error estimate.
	floor := math.Abs(dt) * 1e-9

	for math.Abs(remaining) > floor {
		if math.Abs(h) > math.Abs(remaining) {
			h = remaining
		}

		next, errRatio := r.attempt(m, cur, u, h)
		if math.IsNaN(errRatio) {
			// The model blew up; hand the state back for the caller's
			// validation to catch.
			return next
		}

		if errRatio <= 1 || math.Abs(h) <= floor {
			remaining -= h
			cur = next
			if errRatio > 0 {
				h *= math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			} else {
				h *= r.maxScale
			}
		} else {
			h *= math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			if math.Abs(h) < floor {
				h = math.Copysign(floor, dt)
			}
		}
	}

	return cur
}

func (r *RK45) attempt(m ocp.Model, x ocp.State, u ocp.Control, h float64) (ocp.State, float64) {
	n := len(x)

	k1 := m.Dynamics(x, u)

	x2 := make(ocp.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + h*b21*k1[i]
	}
	k2 := m.Dynamics(x2, u)

	x3 := make(ocp.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := m.Dynamics(x3, u)

	x4 := make(ocp.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := m.Dynamics(x4, u)

	x5 := make(ocp.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := m.Dynamics(x5, u)

	x6 := make(ocp.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := m.Dynamics(x6, u)

	xNew := make(ocp.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := m.Dynamics(xNew, u)

	tol := r.Tol
	if tol <= 0 {
		tol = 1e-6
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(h*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return xNew, errMax / tol
}
