package opt

import "sort"

// Roster is a value object: a fixed-size selection of candidate ids with its
// derived totals. Rosters are recomputed from the pool, never mutated in place.
type Roster struct {
	IDs        []string
	TotalCost  int
	TotalScore int
}

// rosterFrom materializes a Roster from pool indices. IDs come out sorted
// ascending regardless of the order the solver assembled the indices in.
func rosterFrom(pool Pool, idxs []int) Roster {
	r := Roster{IDs: make([]string, 0, len(idxs))}
	for _, i := range idxs {
		c := pool.Candidates[i]
		r.IDs = append(r.IDs, c.ID)
		r.TotalCost += c.Cost
		r.TotalScore += c.Score
	}
	sort.Strings(r.IDs)
	return r
}

func (r Roster) Feasible(budget int) bool { return r.TotalCost <= budget }

// Result is what a solver hands back: the best roster it found, how it got
// there, and whether the search ran to its natural termination. Incomplete is
// set when cooperative cancellation stopped the search early; the roster is
// still feasible and full-size in that case.
type Result struct {
	Roster     Roster
	Strategy   string
	Iterations int
	Incomplete bool
}
