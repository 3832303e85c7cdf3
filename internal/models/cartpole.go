package models

import (
	"math"

	"github.com/kmdra/horizon/internal/ocp"
)

// CartPole is the inverted pendulum on a cart. State is
// [position, velocity, angle, angular rate] with the angle measured
// from upright, so the origin is the unstable balance point.
type CartPole struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64
	Gravity    float64

	MaxForce   float64
	TrackLimit float64

	PosWeight   float64
	VelWeight   float64
	AngleWeight float64
	RateWeight  float64
	ForceWeight float64
}

func NewCartPole() *CartPole {
	return &CartPole{
		CartMass:    1.0,
		PoleMass:    0.1,
		PoleLength:  0.5,
		Gravity:     9.81,
		MaxForce:    10.0,
		TrackLimit:  2.4,
		PosWeight:   1.0,
		VelWeight:   0.1,
		AngleWeight: 10.0,
		RateWeight:  0.1,
		ForceWeight: 0.01,
	}
}

func (c *CartPole) StateDim() int {
	return 4
}

func (c *CartPole) ControlDim() int {
	return 1
}

func (c *CartPole) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	vel := x[1]
	theta := x[2]
	omega := x[3]
	force := u[0]

	mc := c.CartMass
	mp := c.PoleMass
	l := c.PoleLength
	g := c.Gravity

	sint := math.Sin(theta)
	cost := math.Cos(theta)

	temp := (force + mp*l*omega*omega*sint) / (mc + mp)
	thetaacc := (g*sint - cost*temp) / (l * (4.0/3.0 - mp*cost*cost/(mc+mp)))
	xacc := temp - mp*l*thetaacc*cost/(mc+mp)

	return ocp.State{vel, xacc, omega, thetaacc}
}

func (c *CartPole) StageCost(x ocp.State, u ocp.Control) float64 {
	return c.PosWeight*x[0]*x[0] + c.VelWeight*x[1]*x[1] +
		c.AngleWeight*x[2]*x[2] + c.RateWeight*x[3]*x[3] +
		c.ForceWeight*u[0]*u[0]
}

func (c *CartPole) TerminalCost(x ocp.State) float64 {
	return 10 * (c.PosWeight*x[0]*x[0] + c.VelWeight*x[1]*x[1] +
		c.AngleWeight*x[2]*x[2] + c.RateWeight*x[3]*x[3])
}

// Problem assembles a balance problem with the force bounded and the
// cart confined to the track.
func (c *CartPole) Problem(mode ocp.DynamicsMode, horizon int, dt float64) (*ocp.Problem, error) {
	prob, err := ocp.New(mode, c.StateDim(), c.ControlDim(), horizon, dt, c)
	if err != nil {
		return nil, err
	}
	if err := prob.SetInputBound([]float64{-c.MaxForce}, []float64{c.MaxForce}); err != nil {
		return nil, err
	}
	inf := math.Inf(1)
	lower := []float64{-c.TrackLimit, -inf, -inf, -inf}
	upper := []float64{c.TrackLimit, inf, inf, inf}
	if err := prob.SetStateBound(lower, upper); err != nil {
		return nil, err
	}
	return prob, nil
}
