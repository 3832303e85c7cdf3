package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kmdra/horizon/internal/ocp"
)

// Linear is a generic linear plant dx = A·x + B·u with quadratic
// costs xᵀQx + uᵀRu per stage and xᵀQNx at the end of the horizon.
// MaxInput bounds every input symmetrically; zero leaves them free.
type Linear struct {
	A *mat.Dense
	B *mat.Dense

	Q  *mat.SymDense
	R  *mat.SymDense
	QN *mat.SymDense

	MaxInput float64
}

// NewLinear validates the matrix dimensions against each other.
func NewLinear(a, b *mat.Dense, q, r, qn *mat.SymDense) (*Linear, error) {
	n, nc := a.Dims()
	if n != nc {
		return nil, fmt.Errorf("models: A is %dx%d, want square", n, nc)
	}
	br, m := b.Dims()
	if br != n {
		return nil, fmt.Errorf("models: B has %d rows, want %d", br, n)
	}
	if qr, _ := q.Dims(); qr != n {
		return nil, fmt.Errorf("models: Q is %dx%d, want %dx%d", qr, qr, n, n)
	}
	if rr, _ := r.Dims(); rr != m {
		return nil, fmt.Errorf("models: R is %dx%d, want %dx%d", rr, rr, m, m)
	}
	if qnr, _ := qn.Dims(); qnr != n {
		return nil, fmt.Errorf("models: QN is %dx%d, want %dx%d", qnr, qnr, n, n)
	}
	return &Linear{A: a, B: b, Q: q, R: r, QN: qn}, nil
}

func (l *Linear) StateDim() int {
	n, _ := l.A.Dims()
	return n
}

func (l *Linear) ControlDim() int {
	_, m := l.B.Dims()
	return m
}

func (l *Linear) Dynamics(x ocp.State, u ocp.Control) ocp.State {
	xv := mat.NewVecDense(len(x), x)
	uv := mat.NewVecDense(len(u), u)

	var ax, bu mat.VecDense
	ax.MulVec(l.A, xv)
	bu.MulVec(l.B, uv)

	out := make(ocp.State, len(x))
	for i := range out {
		out[i] = ax.AtVec(i) + bu.AtVec(i)
	}
	return out
}

func (l *Linear) StageCost(x ocp.State, u ocp.Control) float64 {
	xv := mat.NewVecDense(len(x), x)
	uv := mat.NewVecDense(len(u), u)
	return mat.Inner(xv, l.Q, xv) + mat.Inner(uv, l.R, uv)
}

func (l *Linear) TerminalCost(x ocp.State) float64 {
	xv := mat.NewVecDense(len(x), x)
	return mat.Inner(xv, l.QN, xv)
}

// Problem assembles a regulation problem toward the origin.
func (l *Linear) Problem(mode ocp.DynamicsMode, horizon int, dt float64) (*ocp.Problem, error) {
	prob, err := ocp.New(mode, l.StateDim(), l.ControlDim(), horizon, dt, l)
	if err != nil {
		return nil, err
	}
	if l.MaxInput > 0 {
		nu := l.ControlDim()
		lower := make([]float64, nu)
		upper := make([]float64, nu)
		for i := 0; i < nu; i++ {
			lower[i] = -l.MaxInput
			upper[i] = l.MaxInput
		}
		if err := prob.SetInputBound(lower, upper); err != nil {
			return nil, err
		}
	}
	return prob, nil
}

// NewOscillator is a damped spring-mass plant with a force input,
// the stock linear demo.
func NewOscillator() *Linear {
	const (
		mass      = 1.0
		stiffness = 2.0
		damping   = 0.4
	)
	return &Linear{
		A:        mat.NewDense(2, 2, []float64{0, 1, -stiffness / mass, -damping / mass}),
		B:        mat.NewDense(2, 1, []float64{0, 1 / mass}),
		Q:        mat.NewSymDense(2, []float64{10, 0, 0, 1}),
		R:        mat.NewSymDense(1, []float64{0.1}),
		QN:       mat.NewSymDense(2, []float64{100, 0, 0, 10}),
		MaxInput: 5.0,
	}
}
