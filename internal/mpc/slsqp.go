package mpc

import (
	"fmt"
	"math"

	"github.com/curioloop/optimizer/numdiff"
	"github.com/curioloop/optimizer/slsqp"
	"gonum.org/v1/gonum/floats"
)

func init() {
	Register(SLSQP{})
}

// SLSQP solves transcribed programs with Kraft's sequential
// least-squares quadratic programming method, with finite-difference
// gradients. It is the bundled default backend.
//
// Recognized options (all optional):
//
//	accuracy          final norm accuracy, > 0 (default 1e-7)
//	max_iterations    SQP iteration limit (default 200)
//	nnls_iterations   subproblem iteration limit, 0 = automatic
//	exact_line_search use an exact line search instead of Armijo
//	diff_method       "forward" or "central" (default "central")
//	rel_step          relative finite-difference step, 0 = automatic
//	bound_inf         bound magnitude treated as infinite, 0 = automatic
//
// SLSQP exposes no multiplier estimates, so solutions carry zeroed
// multipliers and warm starts are primal-only.
type SLSQP struct{}

func (SLSQP) Name() string { return "slsqp" }

type slsqpSettings struct {
	Accuracy        float64 `json:"accuracy"`
	MaxIterations   int     `json:"max_iterations"`
	NNLSIterations  int     `json:"nnls_iterations"`
	ExactLineSearch bool    `json:"exact_line_search"`
	DiffMethod      string  `json:"diff_method"`
	RelStep         float64 `json:"rel_step"`
	BoundInf        float64 `json:"bound_inf"`
}

func (SLSQP) Prepare(nlp *NLP, opts Options) (Solver, error) {
	cfg := slsqpSettings{
		Accuracy:      1e-7,
		MaxIterations: 200,
		DiffMethod:    "central",
	}
	if err := decodeOptions(opts, &cfg); err != nil {
		return nil, fmt.Errorf("mpc: slsqp: %w", err)
	}

	var method numdiff.Method
	switch cfg.DiffMethod {
	case "forward":
		method = numdiff.Forward
	case "central":
		method = numdiff.Central
	default:
		return nil, fmt.Errorf("mpc: slsqp: unknown diff_method %q (want forward or central)", cfg.DiffMethod)
	}
	switch {
	case cfg.Accuracy <= 0:
		return nil, fmt.Errorf("mpc: slsqp: accuracy %g, want > 0", cfg.Accuracy)
	case cfg.MaxIterations <= 0:
		return nil, fmt.Errorf("mpc: slsqp: max_iterations %d, want > 0", cfg.MaxIterations)
	case cfg.NNLSIterations < 0:
		return nil, fmt.Errorf("mpc: slsqp: nnls_iterations %d, want >= 0", cfg.NNLSIterations)
	case cfg.RelStep < 0:
		return nil, fmt.Errorf("mpc: slsqp: rel_step %g, want >= 0", cfg.RelStep)
	case cfg.BoundInf < 0:
		return nil, fmt.Errorf("mpc: slsqp: bound_inf %g, want >= 0", cfg.BoundInf)
	}

	s := &slsqpSolver{
		nlp: nlp,
		cfg: cfg,

		px:   make([]float64, nlp.NumVars),
		pc:   make([]float64, nlp.NumCons),
		gx:   make([]float64, nlp.NumVars),
		jac:  make([]float64, nlp.NumCons*nlp.NumVars),
		gobj: make([]float64, nlp.NumVars),
	}

	// Split the two-sided row bounds into SLSQP's c(w)=0 / c(w)>=0
	// convention. A row with coincident bounds becomes one equality;
	// each finite side of the others becomes one inequality.
	for j := 0; j < nlp.NumCons; j++ {
		lb, ub := nlp.ConLower[j], nlp.ConUpper[j]
		if lb == ub {
			s.eqRows = append(s.eqRows, j)
			continue
		}
		if !math.IsInf(ub, 1) {
			s.ineqRows = append(s.ineqRows, ineqRow{row: j, scale: -1, shift: ub})
		}
		if !math.IsInf(lb, -1) {
			s.ineqRows = append(s.ineqRows, ineqRow{row: j, scale: 1, shift: -lb})
		}
	}
	if len(s.eqRows) > nlp.NumVars {
		return nil, fmt.Errorf("mpc: slsqp: %d equality rows exceed %d variables", len(s.eqRows), nlp.NumVars)
	}

	// Finite differencing runs unbounded on purpose: the pinned first
	// state has coincident variable bounds, which would force a zero
	// step if the differencer tried to stay inside them.
	s.jacSpec = &numdiff.ApproxSpec{
		N:       nlp.NumVars,
		M:       nlp.NumCons,
		Object:  nlp.Constraints,
		Method:  method,
		RelStep: cfg.RelStep,
	}
	s.objSpec = &numdiff.ApproxSpec{
		N:       nlp.NumVars,
		M:       1,
		Object:  func(x, y []float64) { y[0] = nlp.Objective(x) },
		Method:  method,
		RelStep: cfg.RelStep,
	}

	s.object = func(x, g []float64) float64 {
		s.values(x)
		if g != nil {
			s.grads(x)
			copy(g, s.gobj)
		}
		return s.pf
	}
	for _, j := range s.eqRows {
		row := j
		s.eqCons = append(s.eqCons, func(x, g []float64) float64 {
			s.values(x)
			if g != nil {
				s.grads(x)
				copy(g, s.jac[row*nlp.NumVars:(row+1)*nlp.NumVars])
			}
			return s.pc[row] - nlp.ConLower[row]
		})
	}
	for _, r := range s.ineqRows {
		r := r
		s.neqCons = append(s.neqCons, func(x, g []float64) float64 {
			s.values(x)
			if g != nil {
				s.grads(x)
				base := s.jac[r.row*nlp.NumVars : (r.row+1)*nlp.NumVars]
				for i, v := range base {
					g[i] = r.scale * v
				}
			}
			return r.shift + r.scale*s.pc[r.row]
		})
	}

	return s, nil
}

type ineqRow struct {
	row   int
	scale float64
	shift float64
}

type slsqpSolver struct {
	nlp *NLP
	cfg slsqpSettings

	eqRows   []int
	ineqRows []ineqRow

	object  slsqp.Evaluation
	eqCons  []slsqp.Evaluation
	neqCons []slsqp.Evaluation

	jacSpec *numdiff.ApproxSpec
	objSpec *numdiff.ApproxSpec

	// Value and gradient caches, keyed on the last evaluation point.
	// SLSQP asks for the objective and every constraint row one by
	// one at the same iterate; each full program evaluation here
	// serves the whole sweep.
	px     []float64
	pc     []float64
	pf     float64
	pvalid bool

	gx     []float64
	jac    []float64
	gobj   []float64
	gvalid bool

	ws *slsqp.Workspace
}

func (s *slsqpSolver) values(x []float64) {
	if s.pvalid && floats.Equal(s.px, x) {
		return
	}
	copy(s.px, x)
	s.nlp.Constraints(x, s.pc)
	s.pf = s.nlp.Objective(x)
	s.pvalid = true
}

func (s *slsqpSolver) grads(x []float64) {
	if s.gvalid && floats.Equal(s.gx, x) {
		return
	}
	copy(s.gx, x)
	// Diff perturbs x in place and restores it before returning.
	if err := s.jacSpec.Diff(x, s.jac); err != nil {
		panic(fmt.Sprintf("mpc: slsqp jacobian: %v", err))
	}
	if err := s.objSpec.Diff(x, s.gobj); err != nil {
		panic(fmt.Sprintf("mpc: slsqp gradient: %v", err))
	}
	s.gvalid = true
}

func (s *slsqpSolver) Solve(req *Request) (*Solution, error) {
	n := s.nlp.NumVars
	if len(req.Init) != n {
		return nil, fmt.Errorf("mpc: slsqp: initial point has %d entries, want %d", len(req.Init), n)
	}

	bounds := make([]slsqp.Bound, n)
	for i := range bounds {
		bounds[i] = slsqp.Bound{Lower: req.VarLower[i], Upper: req.VarUpper[i]}
	}
	prob := slsqp.Problem{
		N: n,
		Stop: slsqp.Termination{
			Accuracy:       s.cfg.Accuracy,
			MaxIterations:  s.cfg.MaxIterations,
			NNLSIterations: s.cfg.NNLSIterations,
		},
		Line:    slsqp.LineSearch{Exact: s.cfg.ExactLineSearch},
		Object:  s.object,
		EqCons:  s.eqCons,
		NeqCons: s.neqCons,
		Bounds:  bounds,
		BndInf:  s.cfg.BoundInf,
	}
	opt, err := prob.New()
	if err != nil {
		return nil, fmt.Errorf("mpc: slsqp: %w", err)
	}
	if s.ws == nil {
		s.ws = opt.Init()
	}

	res := opt.Fit(req.Init, s.ws)

	status, msg := summarize(res)
	return &Solution{
		Primal:     res.X,
		Objective:  res.F,
		LamVar:     make([]float64, n),
		LamCon:     make([]float64, s.nlp.NumCons),
		Status:     status,
		Iterations: res.NumIter,
		Message:    msg,
	}, nil
}

func summarize(res *slsqp.Result) (Status, string) {
	switch res.Status {
	case slsqp.OK:
		return Converged, ""
	case slsqp.SQPExceedMaxIter:
		return MaxIterations, "slsqp: iteration limit reached"
	case slsqp.NNLSExceedMaxIter:
		return MaxIterations, "slsqp: subproblem iteration limit reached"
	case slsqp.ConsIncompatible:
		return Infeasible, "slsqp: incompatible inequality constraints"
	case slsqp.BadArgument:
		return NumericalError, "slsqp: evaluation failed"
	case slsqp.SearchNotDescent:
		return NumericalError, "slsqp: no descent direction in line search"
	case slsqp.LSISingularE, slsqp.LSEISingularC, slsqp.HFTIRankDefect:
		return NumericalError, "slsqp: singular least-squares subproblem"
	default:
		return NumericalError, fmt.Sprintf("slsqp: status %v", res.Status)
	}
}
