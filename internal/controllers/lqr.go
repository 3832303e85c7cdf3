package controllers

import "github.com/kmdra/horizon/internal/ocp"

// LQR is static state feedback u = -K·(x - target). The gain matrix
// is supplied precomputed; rows beyond the state length and a short
// target are tolerated.
type LQR struct {
	K      [][]float64
	Target ocp.State
}

func NewLQR(k [][]float64, target ocp.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x ocp.State, t float64) (ocp.Control, error) {
	u := make(ocp.Control, len(l.K))

	for i := range u {
		for j := range x {
			if j >= len(l.K[i]) {
				break
			}
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			u[i] -= l.K[i][j] * (x[j] - target)
		}
	}

	return u, nil
}

// NewPendulumLQR is a hand-tuned gain for the stock pendulum,
// regulating angle and rate to zero.
func NewPendulumLQR() *LQR {
	k := [][]float64{
		{31.62, 10.0},
	}
	return NewLQR(k, ocp.State{0, 0})
}
