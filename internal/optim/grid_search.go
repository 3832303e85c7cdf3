package optim

import (
	"context"
	"math"

	"github.com/kmdra/horizon/internal/sim"
)

// Runner executes one closed-loop run for a candidate parameter set.
// Builds that fail or runs that blow up are skipped by the search
// rather than aborting it.
type Runner func(ctx context.Context, params map[string]float64) (*sim.Result, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the parameter grids and
// returns the combination minimizing the named metric. The metric
// must appear in the run's results to count.
func (g *GridSearch) Search(ctx context.Context, run Runner, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), run, metricName, &best, &bestParams)

	return bestParams, best, ctx.Err()
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	run Runner,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		result, err := run(ctx, current)
		if err != nil {
			return
		}

		val, ok := result.Metrics[metricName]
		if !ok || val >= *best {
			return
		}

		*best = val
		*bestParams = make(map[string]float64)
		for k, v := range current {
			(*bestParams)[k] = v
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, run, metricName, best, bestParams)
	}
}

// Linspace builds an evenly spaced grid over [lo, hi] with n points,
// for feeding parameter ranges to the search.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals
}
