package opt

import "sort"

// Candidate is one entrant eligible for roster selection.
type Candidate struct {
	ID    string
	Cost  int
	Score int
}

// Pool is the set of eligible candidates for a single solve. Candidates are
// sorted by ID ascending at build time; that ordering is the enumeration and
// scan order for every solver, which makes first-found tie-breaks reproducible.
// A Pool is never mutated after BuildPool returns.
type Pool struct {
	Candidates []Candidate
}

// BuildPool merges a cost table and a score table into a Pool. Only ids present
// in both tables survive, and only with score >= minScore. Missing ids are a
// membership exclusion, not an error: upstream registries are allowed to be
// incomplete.
func BuildPool(costs, scores map[string]int, minScore int) Pool {
	out := make([]Candidate, 0, len(costs))
	for id, cost := range costs {
		score, ok := scores[id]
		if !ok || score < minScore {
			continue
		}
		out = append(out, Candidate{ID: id, Cost: cost, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return Pool{Candidates: out}
}

func (p Pool) Len() int { return len(p.Candidates) }

// sums computes total cost and score of the candidates at idxs.
func (p Pool) sums(idxs []int) (cost, score int) {
	for _, i := range idxs {
		cost += p.Candidates[i].Cost
		score += p.Candidates[i].Score
	}
	return cost, score
}
