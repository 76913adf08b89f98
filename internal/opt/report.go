package opt

import (
	"fmt"
	"strings"
)

// ReportLine is the per-candidate audit breakdown of a winning roster.
type ReportLine struct {
	ID    string
	Cost  int
	Score int
}

// Report is the formatted view of a Result handed to callers and the CLI.
type Report struct {
	Strategy   string
	Lines      []ReportLine
	TotalCost  int
	TotalScore int
	Iterations int
	Incomplete bool
}

// BuildReport expands a Result's roster ids back into their cost/score rows
// using the pool the solve ran against.
func BuildReport(pool Pool, res Result) Report {
	byID := make(map[string]Candidate, pool.Len())
	for _, c := range pool.Candidates {
		byID[c.ID] = c
	}
	rep := Report{
		Strategy:   res.Strategy,
		TotalCost:  res.Roster.TotalCost,
		TotalScore: res.Roster.TotalScore,
		Iterations: res.Iterations,
		Incomplete: res.Incomplete,
	}
	for _, id := range res.Roster.IDs {
		c := byID[id]
		rep.Lines = append(rep.Lines, ReportLine{ID: c.ID, Cost: c.Cost, Score: c.Score})
	}
	return rep
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "strategy=%s iterations=%d", r.Strategy, r.Iterations)
	if r.Incomplete {
		b.WriteString(" (incomplete)")
	}
	b.WriteByte('\n')
	for _, ln := range r.Lines {
		fmt.Fprintf(&b, "  %-24s cost=%-8d score=%d\n", ln.ID, ln.Cost, ln.Score)
	}
	fmt.Fprintf(&b, "  total: cost=%d score=%d\n", r.TotalCost, r.TotalScore)
	return b.String()
}
