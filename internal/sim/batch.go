package sim

import (
	"context"
	"errors"
	"sync"

	"github.com/kmdra/horizon/internal/ocp"
)

// Batch runs several loops concurrently from the same initial state.
// Each run gets its own Loop from the factory, since steppers keep
// scratch buffers and controllers keep history; the run index lets
// the factory vary gains, horizons or models across the batch.
type Batch struct {
	runs    int
	factory func(run int) (*Loop, error)
}

func NewBatch(runs int, factory func(run int) (*Loop, error)) *Batch {
	return &Batch{runs: runs, factory: factory}
}

// Run executes every loop against the same start and window. A failed
// run leaves its partial result in place (nil when the factory itself
// failed); the joined error reports every failure.
func (b *Batch) Run(ctx context.Context, x0 ocp.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, b.runs)
	errs := make([]error, b.runs)

	var wg sync.WaitGroup
	for i := 0; i < b.runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			loop, err := b.factory(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = loop.Run(ctx, x0, cfg)
		}(i)
	}

	wg.Wait()

	return results, errors.Join(errs...)
}
