package api

import (
	"fmt"

	"courtpick/internal/model"
	"courtpick/internal/opt"
)

func validateSolveRequest(req *model.SolveRequest) error {
	switch req.Strategy {
	case "", opt.StrategyExhaustive, opt.StrategyHillClimb, opt.StrategySample:
	default:
		return fmt.Errorf("invalid strategy: %s", req.Strategy)
	}
	if req.Tour == "" {
		return fmt.Errorf("tour is required")
	}
	if req.K <= 0 {
		return fmt.Errorf("k must be > 0")
	}
	if req.Budget < 0 {
		return fmt.Errorf("budget must be >= 0")
	}
	if req.MinScore < 0 {
		return fmt.Errorf("minScore must be >= 0")
	}
	if req.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0")
	}
	if req.MaxIterations < 0 {
		return fmt.Errorf("maxIterations must be >= 0")
	}
	if req.SeedRetries < 0 {
		return fmt.Errorf("seedRetries must be >= 0")
	}
	if req.MaxMoves < 0 {
		return fmt.Errorf("maxMoves must be >= 0")
	}
	if req.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must be >= 0")
	}
	return nil
}

func validateRegistryUpload(req *model.RegistryUpload) error {
	if req.Tour == "" {
		return fmt.Errorf("tour is required")
	}
	if len(req.Costs) == 0 {
		return fmt.Errorf("costs table is empty")
	}
	if len(req.Scores) == 0 {
		return fmt.Errorf("scores table is empty")
	}
	for id, c := range req.Costs {
		if c < 0 {
			return fmt.Errorf("cost for %s must be >= 0", id)
		}
	}
	for id, sc := range req.Scores {
		if sc < 0 {
			return fmt.Errorf("score for %s must be >= 0", id)
		}
	}
	return nil
}
