package opt

import "context"

// SolveExhaustive enumerates every size-k subset of the pool in lexicographic
// order over the pool's fixed candidate ordering and returns the proven
// optimum. A later subset with an equal score never replaces the incumbent, so
// repeated runs return the identical roster.
//
// Cost is C(n, k) subset evaluations; callers are expected to have trimmed the
// pool with a minScore filter before reaching for this solver.
func SolveExhaustive(ctx context.Context, pool Pool, c Constraint) (Result, error) {
	if err := checkPool(pool, c); err != nil {
		return Result{}, err
	}
	n := pool.Len()
	idx := make([]int, c.K)
	for i := range idx {
		idx[i] = i
	}

	bestScore := -1
	var bestIdx []int
	iterations := 0
	cancelled := false
	for {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		iterations++
		cost, score := pool.sums(idx)
		if cost <= c.Budget && score > bestScore {
			bestScore = score
			bestIdx = append(bestIdx[:0], idx...)
		}
		if !nextCombination(idx, n) {
			break
		}
	}

	if bestIdx == nil {
		if cancelled {
			return Result{Strategy: StrategyExhaustive, Iterations: iterations, Incomplete: true}, ErrCancelled
		}
		return Result{}, ErrNoFeasibleSolution
	}
	return Result{
		Roster:     rosterFrom(pool, bestIdx),
		Strategy:   StrategyExhaustive,
		Iterations: iterations,
		Incomplete: cancelled,
	}, nil
}

// nextCombination advances idx to the lexicographically next k-combination of
// {0..n-1}. Returns false when idx already holds the last combination.
func nextCombination(idx []int, n int) bool {
	k := len(idx)
	for i := k - 1; i >= 0; i-- {
		if idx[i] < n-k+i {
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
			return true
		}
	}
	return false
}
