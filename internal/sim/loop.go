package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/kmdra/horizon/internal/integrators"
	"github.com/kmdra/horizon/internal/ocp"
)

// Loop runs a plant model under a controller: measure, compute the
// input, hold it for one stage, advance the plant.
type Loop struct {
	model      ocp.Model
	stepper    integrators.Stepper
	controller Controller
	metrics    []Metric
}

func New(model ocp.Model, stepper integrators.Stepper, controller Controller) *Loop {
	return &Loop{
		model:      model,
		stepper:    stepper,
		controller: controller,
		metrics:    make([]Metric, 0),
	}
}

func (l *Loop) AddMetric(m Metric) { l.metrics = append(l.metrics, m) }

// Run simulates from x0 for cfg.Duration. It returns the collected
// partial result alongside the error when the controller fails, the
// state diverges or the context is cancelled.
func (l *Loop) Run(ctx context.Context, x0 ocp.State, cfg Config) (*Result, error) {
	if err := l.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != l.model.StateDim() {
		return nil, fmt.Errorf("sim: initial state has %d components, model wants %d",
			len(x0), l.model.StateDim())
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:   make([]ocp.State, 0, steps+1),
		Controls: make([]ocp.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range l.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			l.finish(result)
			return result, ctx.Err()
		default:
		}

		u, err := l.controller.Compute(x, t)
		if err != nil {
			l.finish(result)
			return result, fmt.Errorf("sim: controller at t=%.4f: %w", t, err)
		}

		for _, m := range l.metrics {
			m.Observe(x, u, t)
		}

		x = l.stepper.Step(l.model, x, u, cfg.Dt)
		t = float64(i+1) * cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			l.finish(result)
			return result, &UnstableError{Time: t, Step: i}
		}

		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	l.finish(result)
	return result, nil
}

func (l *Loop) finish(result *Result) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (l *Loop) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
