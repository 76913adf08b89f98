package opt

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFeasibleSolution means no size-k subset of the pool fits the budget
	// (or, for the sampler, none was seen before the iteration cap).
	ErrNoFeasibleSolution = errors.New("opt: no feasible roster within budget")

	// ErrNoFeasibleSeed means the hill climber could not sample a feasible
	// starting roster within its retry cap.
	ErrNoFeasibleSeed = errors.New("opt: no feasible seed roster found")

	// ErrCancelled means the context was cancelled before any feasible roster
	// had been found. When cancellation arrives after a feasible roster exists,
	// solvers return it with Result.Incomplete set instead of this error.
	ErrCancelled = errors.New("opt: solve cancelled before a feasible roster was found")
)

// InsufficientCandidatesError is returned before any searching starts when the
// filtered pool cannot supply k candidates.
type InsufficientCandidatesError struct {
	Have int
	Need int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("opt: pool has %d candidates, need %d", e.Have, e.Need)
}

// ThresholdError is returned by the sampling solver when the iteration cap is
// exhausted without the best feasible score reaching the threshold. Best is nil
// when no feasible roster was seen at all; in that case the error also matches
// ErrNoFeasibleSolution so callers can treat a too-tight budget uniformly
// across solvers.
type ThresholdError struct {
	Threshold  int
	Iterations int
	Best       *Result
}

func (e *ThresholdError) Error() string {
	if e.Best == nil {
		return fmt.Sprintf("opt: threshold %d unreached after %d samples, no feasible roster seen", e.Threshold, e.Iterations)
	}
	return fmt.Sprintf("opt: threshold %d unreached after %d samples, best score %d", e.Threshold, e.Iterations, e.Best.Roster.TotalScore)
}

func (e *ThresholdError) Unwrap() error {
	if e.Best == nil {
		return ErrNoFeasibleSolution
	}
	return nil
}
