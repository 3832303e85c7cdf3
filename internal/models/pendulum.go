package models

import (
	"math"

	"github.com/kmdra/horizon/internal/ocp"
)

type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64

	MaxTorque float64

	AngleWeight    float64
	RateWeight     float64
	TorqueWeight   float64
	TerminalWeight float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:           1.0,
		Length:         1.0,
		Damping:        0.1,
		Gravity:        9.81,
		MaxTorque:      4.0,
		AngleWeight:    10.0,
		RateWeight:     1.0,
		TorqueWeight:   0.05,
		TerminalWeight: 10.0,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

func (p *Pendulum) ControlDim() int {
	return 1
}

func (p *Pendulum) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	theta := x[0]
	omega := x[1]
	torque := u[0]

	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + torque) /
		(p.Mass * p.Length * p.Length)

	return ocp.State{omega, alpha}
}

func (p *Pendulum) StageCost(x ocp.State, u ocp.Control) float64 {
	return p.AngleWeight*x[0]*x[0] + p.RateWeight*x[1]*x[1] + p.TorqueWeight*u[0]*u[0]
}

func (p *Pendulum) TerminalCost(x ocp.State) float64 {
	return p.TerminalWeight * (p.AngleWeight*x[0]*x[0] + p.RateWeight*x[1]*x[1])
}

// Problem assembles a torque-bounded regulation problem around the
// hanging rest position.
func (p *Pendulum) Problem(mode ocp.DynamicsMode, horizon int, dt float64) (*ocp.Problem, error) {
	prob, err := ocp.New(mode, p.StateDim(), p.ControlDim(), horizon, dt, p)
	if err != nil {
		return nil, err
	}
	if err := prob.SetInputBound([]float64{-p.MaxTorque}, []float64{p.MaxTorque}); err != nil {
		return nil, err
	}
	return prob, nil
}
