package models

import (
	"fmt"
	"math"

	"github.com/kmdra/horizon/internal/ocp"
)

// Scenario bundles a ready problem with the initial condition and
// setpoint the demos and config files use.
type Scenario struct {
	Problem *ocp.Problem
	Init    ocp.State
	Target  ocp.State
}

// Build maps a model name onto a stock scenario. The double
// integrator is inherently discretized and ignores the requested
// mode; the continuous models honor it.
func Build(name string, mode ocp.DynamicsMode, horizon int, dt float64) (*Scenario, error) {
	switch name {
	case "pendulum":
		prob, err := NewPendulum().Problem(mode, horizon, dt)
		if err != nil {
			return nil, err
		}
		return &Scenario{
			Problem: prob,
			Init:    ocp.State{math.Pi / 3, 0},
			Target:  ocp.State{0, 0},
		}, nil

	case "cartpole":
		prob, err := NewCartPole().Problem(mode, horizon, dt)
		if err != nil {
			return nil, err
		}
		return &Scenario{
			Problem: prob,
			Init:    ocp.State{0, 0, 0.15, 0},
			Target:  ocp.State{0, 0, 0, 0},
		}, nil

	case "double_integrator":
		prob, err := NewDoubleIntegrator(dt).Problem(horizon)
		if err != nil {
			return nil, err
		}
		return &Scenario{
			Problem: prob,
			Init:    ocp.State{-1, 0},
			Target:  ocp.State{0, 0},
		}, nil

	case "drone":
		prob, err := NewDrone().Problem(mode, horizon, dt)
		if err != nil {
			return nil, err
		}
		return &Scenario{
			Problem: prob,
			Init:    ocp.State{0.5, -0.5, 0.2, 0, 0, 0},
			Target:  ocp.State{0, 0, 0, 0, 0, 0},
		}, nil

	case "oscillator":
		prob, err := NewOscillator().Problem(mode, horizon, dt)
		if err != nil {
			return nil, err
		}
		return &Scenario{
			Problem: prob,
			Init:    ocp.State{1.5, 0},
			Target:  ocp.State{0, 0},
		}, nil

	default:
		return nil, fmt.Errorf("models: unknown model %q (have %v)", name, Names())
	}
}

// Names lists the buildable model names.
func Names() []string {
	return []string{"cartpole", "double_integrator", "drone", "oscillator", "pendulum"}
}
