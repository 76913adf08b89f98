package opt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"courtpick/internal/opt"
)

func TestBuildPool_IntersectsAndFilters(t *testing.T) {
	costs := map[string]int{"alcaraz": 30000, "sinner": 40000, "rune": 20000, "noscore": 5000}
	scores := map[string]int{"alcaraz": 60, "sinner": 70, "rune": 10, "nocost": 90}

	pool := opt.BuildPool(costs, scores, 20)
	// "noscore" missing from scores, "nocost" missing from costs, "rune" under minScore
	require.Equal(t, 2, pool.Len())
	require.Equal(t, "alcaraz", pool.Candidates[0].ID)
	require.Equal(t, "sinner", pool.Candidates[1].ID)
}

func TestBuildPool_SortedByID(t *testing.T) {
	costs := map[string]int{"zed": 1, "mid": 2, "abc": 3}
	scores := map[string]int{"zed": 1, "mid": 1, "abc": 1}
	pool := opt.BuildPool(costs, scores, 0)
	require.Equal(t, []string{"abc", "mid", "zed"}, []string{
		pool.Candidates[0].ID, pool.Candidates[1].ID, pool.Candidates[2].ID,
	})
}

func TestCheckPool_InsufficientCandidates(t *testing.T) {
	costs := map[string]int{"a": 1, "b": 2, "c": 3}
	scores := map[string]int{"a": 5, "b": 50, "c": 60}
	// minScore 40 leaves only b and c; k=3 cannot be satisfied
	pool := opt.BuildPool(costs, scores, 40)
	require.Equal(t, 2, pool.Len())

	c := opt.Constraint{K: 3, Budget: 100}
	for _, strategy := range []string{opt.StrategyExhaustive, opt.StrategyHillClimb, opt.StrategySample} {
		_, err := opt.Solve(context.Background(), pool, opt.Params{
			Strategy: strategy, Constraint: c, Seed: 1, MaxIterations: 10,
		})
		var ice *opt.InsufficientCandidatesError
		require.ErrorAs(t, err, &ice, "strategy %s", strategy)
		require.Equal(t, 2, ice.Have)
		require.Equal(t, 3, ice.Need)
	}
}

func TestConstraint_Validate(t *testing.T) {
	require.Error(t, opt.Constraint{K: 0, Budget: 10}.Validate())
	require.Error(t, opt.Constraint{K: 2, Budget: -1}.Validate())
	require.NoError(t, opt.Constraint{K: 2, Budget: 0}.Validate())
}
