package opt_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"courtpick/internal/opt"
)

// scenarioPool is the documented reference case: k=2, budget=60000 must pick
// {B,C} at score 120 / cost 60000 over {A,C} at score 110.
func scenarioPool() opt.Pool {
	costs := map[string]int{"A": 30000, "B": 40000, "C": 20000, "D": 10000}
	scores := map[string]int{"A": 60, "B": 70, "C": 50, "D": 20}
	return opt.BuildPool(costs, scores, 0)
}

func TestExhaustive_ReferenceScenario(t *testing.T) {
	res, err := opt.SolveExhaustive(context.Background(), scenarioPool(), opt.Constraint{K: 2, Budget: 60000})
	require.NoError(t, err)
	require.Equal(t, []string{"B", "C"}, res.Roster.IDs)
	require.Equal(t, 120, res.Roster.TotalScore)
	require.Equal(t, 60000, res.Roster.TotalCost)
}

func TestExhaustive_NoFeasibleSolution(t *testing.T) {
	// cheapest pair is C+D at 30000
	_, err := opt.SolveExhaustive(context.Background(), scenarioPool(), opt.Constraint{K: 2, Budget: 25000})
	require.ErrorIs(t, err, opt.ErrNoFeasibleSolution)
}

func TestExhaustive_Deterministic(t *testing.T) {
	pool := scenarioPool()
	c := opt.Constraint{K: 2, Budget: 60000}
	first, err := opt.SolveExhaustive(context.Background(), pool, c)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := opt.SolveExhaustive(context.Background(), pool, c)
		require.NoError(t, err)
		require.Equal(t, first.Roster, again.Roster)
	}
}

func TestExhaustive_FirstFoundTieBreak(t *testing.T) {
	// a+b and a+c tie on score and both fit; a+b enumerates first.
	costs := map[string]int{"a": 10, "b": 10, "c": 10}
	scores := map[string]int{"a": 5, "b": 5, "c": 5}
	pool := opt.BuildPool(costs, scores, 0)
	res, err := opt.SolveExhaustive(context.Background(), pool, opt.Constraint{K: 2, Budget: 100})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, res.Roster.IDs)
}

func TestExhaustive_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := opt.SolveExhaustive(ctx, scenarioPool(), opt.Constraint{K: 2, Budget: 60000})
	require.ErrorIs(t, err, opt.ErrCancelled)
	require.True(t, res.Incomplete)
}

// bruteBest independently enumerates all k-subsets by recursion and returns the
// best feasible score, or -1 when nothing fits.
func bruteBest(pool opt.Pool, k, budget int) int {
	n := pool.Len()
	best := -1
	var rec func(start int, chosen []int)
	rec = func(start int, chosen []int) {
		if len(chosen) == k {
			cost, score := 0, 0
			for _, i := range chosen {
				cost += pool.Candidates[i].Cost
				score += pool.Candidates[i].Score
			}
			if cost <= budget && score > best {
				best = score
			}
			return
		}
		for i := start; i < n; i++ {
			rec(i+1, append(chosen, i))
		}
	}
	rec(0, nil)
	return best
}

func TestExhaustive_OptimalVsBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		n := 8 + rng.Intn(8) // up to 15 candidates
		costs := map[string]int{}
		scores := map[string]int{}
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("p%02d", i)
			costs[id] = 1000 + rng.Intn(9000)
			scores[id] = rng.Intn(100)
		}
		pool := opt.BuildPool(costs, scores, 0)
		k := 2 + rng.Intn(3)
		budget := 3000 * k
		c := opt.Constraint{K: k, Budget: budget}

		want := bruteBest(pool, k, budget)
		res, err := opt.SolveExhaustive(context.Background(), pool, c)
		if want < 0 {
			require.ErrorIs(t, err, opt.ErrNoFeasibleSolution)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, want, res.Roster.TotalScore)
		require.Len(t, res.Roster.IDs, k)
		require.LessOrEqual(t, res.Roster.TotalCost, budget)
	}
}
