package integrators

import "github.com/kmdra/horizon/internal/ocp"

// Discrete applies the model's Dynamics as the next-state map. dt is
// ignored; a discretized model bakes its sampling period into the map.
type Discrete struct{}

func NewDiscrete() *Discrete {
	return &Discrete{}
}

func (d *Discrete) Step(m ocp.Model, x ocp.State, u ocp.Control, dt float64) ocp.State {
	return m.Dynamics(x, u)
}
