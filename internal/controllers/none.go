package controllers

import "github.com/kmdra/horizon/internal/ocp"

// None applies zero input, the open-loop baseline.
type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(x ocp.State, t float64) (ocp.Control, error) {
	return make(ocp.Control, n.dim), nil
}
