package opt

import (
	"context"
	"math/rand"
	"time"
)

// SampleOptions tunes the randomized-sampling solver. MaxIterations is
// mandatory: a cap of 0 fails immediately rather than looping until the
// threshold is met, so the solver always terminates.
type SampleOptions struct {
	Seed          int64 // rng seed; 0 means derive from wall clock
	Threshold     int   // target total score; reaching it ends the search
	MaxIterations int
}

// SolveSample repeatedly draws uniform random size-k rosters, keeping the best
// feasible one seen. It succeeds as soon as the best score reaches Threshold
// and fails with a ThresholdError once MaxIterations draws are exhausted. With
// a fixed Seed the sequence of draws, and therefore the outcome, is exactly
// reproducible.
func SolveSample(ctx context.Context, pool Pool, c Constraint, o SampleOptions) (Result, error) {
	if err := checkPool(pool, c); err != nil {
		return Result{}, err
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(o.Seed))
	n := pool.Len()

	bestScore := -1
	var bestIdx []int
	iterations := 0
	for it := 0; it < o.MaxIterations; it++ {
		if ctx.Err() != nil {
			if bestIdx == nil {
				return Result{Strategy: StrategySample, Iterations: iterations, Incomplete: true}, ErrCancelled
			}
			return Result{
				Roster:     rosterFrom(pool, bestIdx),
				Strategy:   StrategySample,
				Iterations: iterations,
				Incomplete: true,
			}, nil
		}
		iterations++
		idxs := sampleK(rng, n, c.K)
		cost, score := pool.sums(idxs)
		if cost > c.Budget || score <= bestScore {
			continue
		}
		bestScore = score
		bestIdx = append(bestIdx[:0], idxs...)
		if bestScore >= o.Threshold {
			return Result{
				Roster:     rosterFrom(pool, bestIdx),
				Strategy:   StrategySample,
				Iterations: iterations,
			}, nil
		}
	}

	terr := &ThresholdError{Threshold: o.Threshold, Iterations: iterations}
	if bestIdx != nil {
		terr.Best = &Result{
			Roster:     rosterFrom(pool, bestIdx),
			Strategy:   StrategySample,
			Iterations: iterations,
		}
	}
	return Result{}, terr
}
