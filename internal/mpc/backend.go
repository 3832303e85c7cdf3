package mpc

import (
	"fmt"
	"sort"
)

// Status classifies a backend's verdict on one solve.
type Status int

const (
	// Converged means the backend met its tolerances.
	Converged Status = iota
	// MaxIterations means the iteration budget ran out first.
	MaxIterations
	// Infeasible means the backend decided the constraints cannot be
	// satisfied.
	Infeasible
	// NumericalError covers everything else: singular subproblems,
	// failed line searches, evaluation blowups.
	NumericalError
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterations:
		return "max iterations"
	case Infeasible:
		return "infeasible"
	case NumericalError:
		return "numerical error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Request carries one warm-started solve. The bound slices alias the
// program's; solvers must not write to them. Init and the multiplier
// estimates alias the caller's cache and are read before any output
// is produced.
type Request struct {
	Init     []float64
	VarLower []float64
	VarUpper []float64
	ConLower []float64
	ConUpper []float64
	LamVar   []float64
	LamCon   []float64
}

// Solution is the backend's answer. Primal always holds the best
// iterate found, converged or not, so the caller can warm-start the
// next solve from it. Backends without multiplier output leave LamVar
// and LamCon zeroed.
type Solution struct {
	Primal     []float64
	Objective  float64
	LamVar     []float64
	LamCon     []float64
	Status     Status
	Iterations int
	Message    string
}

// Solver is a prepared program bound to one backend. Implementations
// may reuse internal workspaces across calls and are not safe for
// concurrent use.
type Solver interface {
	Solve(req *Request) (*Solution, error)
}

// Backend turns a transcribed program into a reusable solver.
type Backend interface {
	Name() string
	Prepare(nlp *NLP, opts Options) (Solver, error)
}

var backends = map[string]Backend{}

// Register makes a backend available by name. Call from init; later
// registrations replace earlier ones.
func Register(b Backend) {
	backends[b.Name()] = b
}

func lookupBackend(name string) (Backend, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Backends())
	}
	return b, nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
