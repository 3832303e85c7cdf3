package integrators

import "github.com/kmdra/horizon/internal/ocp"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(m ocp.Model, x ocp.State, u ocp.Control, dt float64) ocp.State {
	dx := m.Dynamics(x, u)
	result := make(ocp.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
