package opt

import (
	"context"
	"fmt"
)

// Solver strategies.
const (
	StrategyExhaustive = "exhaustive"
	StrategyHillClimb  = "hillclimb"
	StrategySample     = "sample"
)

// Params is the full, explicit configuration for one solve call. There is no
// shared mutable solver state: each call is a pure function of (pool, params).
type Params struct {
	Strategy   string
	Constraint Constraint

	// hill climb
	Seed        int64
	SeedRetries int
	MaxMoves    int

	// sampling
	Threshold     int
	MaxIterations int
}

// Solve dispatches to the strategy named in p. Unknown strategies are an error
// rather than a silent default.
func Solve(ctx context.Context, pool Pool, p Params) (Result, error) {
	switch p.Strategy {
	case StrategyExhaustive:
		return SolveExhaustive(ctx, pool, p.Constraint)
	case StrategyHillClimb:
		return SolveHillClimb(ctx, pool, p.Constraint, ClimbOptions{
			Seed:        p.Seed,
			SeedRetries: p.SeedRetries,
			MaxMoves:    p.MaxMoves,
		})
	case StrategySample:
		return SolveSample(ctx, pool, p.Constraint, SampleOptions{
			Seed:          p.Seed,
			Threshold:     p.Threshold,
			MaxIterations: p.MaxIterations,
		})
	default:
		return Result{}, fmt.Errorf("opt: unknown strategy %q", p.Strategy)
	}
}
