package sim

import (
	"context"
	"sync"
)

// RunnerFactory builds a fully independent runner for one seed.
type RunnerFactory func(seed uint64) (*Runner, error)

// Ensemble runs numRuns runners concurrently, seeded seedStart+i.
type Ensemble struct {
	factory   RunnerFactory
	numRuns   int
	seedStart uint64
}

func NewEnsemble(factory RunnerFactory, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			runner, err := e.factory(e.seedStart + uint64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = runner.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
