package controllers

import "github.com/kmdra/horizon/internal/ocp"

// PID regulates the first state component toward Target with a single
// input. It keeps integral and derivative state between calls, so one
// instance serves one run.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Compute(x ocp.State, t float64) (ocp.Control, error) {
	if len(x) == 0 {
		return ocp.Control{0}, nil
	}

	err := p.Target - x[0]

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return ocp.Control{p.Kp * err}, nil
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return ocp.Control{u}, nil
	}
	return ocp.Control{p.Kp * err}, nil
}

// Reset clears the accumulated state so the controller can start a
// fresh run.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}
