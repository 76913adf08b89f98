package opt

import (
	"context"
	"math/rand"
	"sort"
	"time"
)

// ClimbOptions tunes the hill-climbing solver. Zero values pick the defaults.
type ClimbOptions struct {
	Seed        int64 // rng seed; 0 means derive from wall clock
	SeedRetries int   // random samples allowed while hunting a feasible start
	MaxMoves    int   // safety cap on accepted swaps
}

const (
	defaultSeedRetries = 200
	defaultMaxMoves    = 10000
)

// SolveHillClimb starts from a random feasible roster and applies
// first-improvement single-candidate swaps: positions are scanned in order,
// replacement candidates in pool order, and the first swap that stays within
// budget and strictly raises the score is taken immediately, restarting the
// scan from position 0. The search stops when a full pass finds no improving
// feasible swap, which is the local-optimum condition; MaxMoves bounds the
// number of accepted swaps as a safety net. The budget is enforced per
// candidate roster, never as the loop guard.
func SolveHillClimb(ctx context.Context, pool Pool, c Constraint, o ClimbOptions) (Result, error) {
	if err := checkPool(pool, c); err != nil {
		return Result{}, err
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.SeedRetries <= 0 {
		o.SeedRetries = defaultSeedRetries
	}
	if o.MaxMoves <= 0 {
		o.MaxMoves = defaultMaxMoves
	}
	rng := rand.New(rand.NewSource(o.Seed))
	n := pool.Len()

	// Seed: repeated uniform sampling until one roster fits the budget.
	var cur []int
	iterations := 0
	for try := 0; try < o.SeedRetries; try++ {
		if ctx.Err() != nil {
			return Result{Strategy: StrategyHillClimb, Iterations: iterations, Incomplete: true}, ErrCancelled
		}
		iterations++
		idxs := sampleK(rng, n, c.K)
		if cost, _ := pool.sums(idxs); cost <= c.Budget {
			cur = idxs
			break
		}
	}
	if cur == nil {
		return Result{}, ErrNoFeasibleSeed
	}
	sort.Ints(cur)
	curCost, curScore := pool.sums(cur)

	inCur := make([]bool, n)
	for _, i := range cur {
		inCur[i] = true
	}

	moves := 0
	for moves < o.MaxMoves {
		improved := false
	scan:
		for pos := 0; pos < c.K; pos++ {
			if ctx.Err() != nil {
				// cur is always a feasible full-size roster here
				return Result{
					Roster:     rosterFrom(pool, cur),
					Strategy:   StrategyHillClimb,
					Iterations: iterations,
					Incomplete: true,
				}, nil
			}
			out := cur[pos]
			for cand := 0; cand < n; cand++ {
				if inCur[cand] {
					continue
				}
				iterations++
				newCost := curCost - pool.Candidates[out].Cost + pool.Candidates[cand].Cost
				if newCost > c.Budget {
					continue
				}
				newScore := curScore - pool.Candidates[out].Score + pool.Candidates[cand].Score
				if newScore <= curScore {
					continue
				}
				// first improving feasible swap wins; restart the scan
				cur[pos] = cand
				inCur[out] = false
				inCur[cand] = true
				curCost, curScore = newCost, newScore
				moves++
				improved = true
				break scan
			}
		}
		if !improved {
			break
		}
	}

	return Result{
		Roster:     rosterFrom(pool, cur),
		Strategy:   StrategyHillClimb,
		Iterations: iterations,
	}, nil
}

// sampleK draws k distinct indices from [0, n) uniformly at random.
func sampleK(rng *rand.Rand, n, k int) []int {
	perm := rng.Perm(n)
	return perm[:k]
}
