package models

import "github.com/kmdra/horizon/internal/ocp"

// DoubleIntegrator is a discretized point mass driven by bounded
// acceleration. The map bakes in the sampling period, so it pairs
// with [ocp.Discretized].
type DoubleIntegrator struct {
	Dt       float64
	MaxAccel float64

	Target ocp.State

	PosWeight   float64
	VelWeight   float64
	AccelWeight float64
}

func NewDoubleIntegrator(dt float64) *DoubleIntegrator {
	return &DoubleIntegrator{
		Dt:          dt,
		MaxAccel:    1.0,
		Target:      ocp.State{0, 0},
		PosWeight:   100.0,
		VelWeight:   10.0,
		AccelWeight: 0.1,
	}
}

func (d *DoubleIntegrator) StateDim() int {
	return 2
}

func (d *DoubleIntegrator) ControlDim() int {
	return 1
}

func (d *DoubleIntegrator) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	dt := d.Dt
	return ocp.State{
		x[0] + dt*x[1] + 0.5*dt*dt*u[0],
		x[1] + dt*u[0],
	}
}

func (d *DoubleIntegrator) StageCost(x ocp.State, u ocp.Control) float64 {
	return d.AccelWeight * u[0] * u[0]
}

func (d *DoubleIntegrator) TerminalCost(x ocp.State) float64 {
	dp := x[0] - d.Target[0]
	dv := x[1] - d.Target[1]
	return d.PosWeight*dp*dp + d.VelWeight*dv*dv
}

// Problem assembles a parking problem: reach Target with bounded
// acceleration and minimal effort.
func (d *DoubleIntegrator) Problem(horizon int) (*ocp.Problem, error) {
	prob, err := ocp.New(ocp.Discretized, d.StateDim(), d.ControlDim(), horizon, d.Dt, d)
	if err != nil {
		return nil, err
	}
	if err := prob.SetInputBound([]float64{-d.MaxAccel}, []float64{d.MaxAccel}); err != nil {
		return nil, err
	}
	return prob, nil
}
