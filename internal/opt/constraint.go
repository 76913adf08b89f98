package opt

import "fmt"

// Constraint fixes the roster size and the budget ceiling for a solve.
// MinScore is applied earlier, at pool build; it is carried here so results
// can report the full configuration they were produced under.
type Constraint struct {
	K        int
	Budget   int
	MinScore int
}

func (c Constraint) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("opt: k must be > 0, got %d", c.K)
	}
	if c.Budget < 0 {
		return fmt.Errorf("opt: budget must be >= 0, got %d", c.Budget)
	}
	return nil
}

// checkPool validates the constraint and verifies the pool can supply k
// candidates. Every solver calls this before searching.
func checkPool(pool Pool, c Constraint) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if pool.Len() < c.K {
		return &InsufficientCandidatesError{Have: pool.Len(), Need: c.K}
	}
	return nil
}
