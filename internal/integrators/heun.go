package integrators

import "github.com/kmdra/horizon/internal/ocp"

// Heun is the modified Euler scheme: one trial Euler step, then the
// average of the slopes at both ends.
type Heun struct {
	k1      ocp.State
	scratch ocp.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) ensureScratch(n int) {
	if len(h.k1) != n {
		h.k1 = make(ocp.State, n)
		h.scratch = make(ocp.State, n)
	}
}

func (h *Heun) Step(m ocp.Model, x ocp.State, u ocp.Control, dt float64) ocp.State {
	n := len(x)
	h.ensureScratch(n)

	k1 := m.Dynamics(x, u)
	copy(h.k1, k1)

	for i := 0; i < n; i++ {
		h.scratch[i] = x[i] + dt*h.k1[i]
	}
	k2 := m.Dynamics(h.scratch, u)

	result := make(ocp.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt*0.5*(h.k1[i]+k2[i])
	}
	return result
}
