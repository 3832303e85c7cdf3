package models

import (
	"math"

	"github.com/kmdra/horizon/internal/ocp"
)

// Drone is a planar birotor. State is [x, y, angle, vx, vy, angular
// rate] and the two inputs are the left and right rotor thrusts, so
// holding altitude needs Mass·Gravity/2 on each side. Thrust cannot
// pull, which makes the lower input bound zero rather than symmetric.
type Drone struct {
	Mass      float64
	Inertia   float64
	ArmLength float64
	Gravity   float64
	DragCoeff float64
	AngDrag   float64

	MaxThrust float64

	PosWeight    float64
	AngleWeight  float64
	VelWeight    float64
	RateWeight   float64
	ThrustWeight float64
}

func NewDrone() *Drone {
	return &Drone{
		Mass:         1.0,
		Inertia:      0.1,
		ArmLength:    0.25,
		Gravity:      9.81,
		DragCoeff:    0.1,
		AngDrag:      0.05,
		MaxThrust:    10.0,
		PosWeight:    10.0,
		AngleWeight:  20.0,
		VelWeight:    1.0,
		RateWeight:   1.0,
		ThrustWeight: 0.01,
	}
}

func (d *Drone) StateDim() int {
	return 6
}

func (d *Drone) ControlDim() int {
	return 2
}

// HoverThrust is the per-rotor thrust that balances gravity.
func (d *Drone) HoverThrust() float64 {
	return d.Mass * d.Gravity / 2
}

func (d *Drone) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	theta := x[2]
	vx := x[3]
	vy := x[4]
	omega := x[5]

	total := u[0] + u[1]
	torque := (u[1] - u[0]) * d.ArmLength

	sin, cos := math.Sin(theta), math.Cos(theta)
	fx := -total*sin - d.DragCoeff*vx
	fy := total*cos - d.Mass*d.Gravity - d.DragCoeff*vy

	return ocp.State{
		vx,
		vy,
		omega,
		fx / d.Mass,
		fy / d.Mass,
		(torque - d.AngDrag*omega) / d.Inertia,
	}
}

// StageCost penalizes deviation from hover, not from zero thrust,
// since the drone has to keep lifting its own weight.
func (d *Drone) StageCost(x ocp.State, u ocp.Control) float64 {
	hover := d.HoverThrust()
	dl := u[0] - hover
	dr := u[1] - hover
	return d.PosWeight*(x[0]*x[0]+x[1]*x[1]) +
		d.AngleWeight*x[2]*x[2] +
		d.VelWeight*(x[3]*x[3]+x[4]*x[4]) +
		d.RateWeight*x[5]*x[5] +
		d.ThrustWeight*(dl*dl+dr*dr)
}

func (d *Drone) TerminalCost(x ocp.State) float64 {
	return 10 * (d.PosWeight*(x[0]*x[0]+x[1]*x[1]) +
		d.AngleWeight*x[2]*x[2] +
		d.VelWeight*(x[3]*x[3]+x[4]*x[4]) +
		d.RateWeight*x[5]*x[5])
}

// Problem assembles a hover regulation problem with one-sided thrust
// bounds.
func (d *Drone) Problem(mode ocp.DynamicsMode, horizon int, dt float64) (*ocp.Problem, error) {
	prob, err := ocp.New(mode, d.StateDim(), d.ControlDim(), horizon, dt, d)
	if err != nil {
		return nil, err
	}
	lower := []float64{0, 0}
	upper := []float64{d.MaxThrust, d.MaxThrust}
	if err := prob.SetInputBound(lower, upper); err != nil {
		return nil, err
	}
	return prob, nil
}
