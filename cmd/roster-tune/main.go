// Command roster-tune benchmarks the three solver strategies against
// generated candidate pools and prints comparative statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"courtpick/internal/opt"
)

type runResult struct {
	score   int
	roster  []string
	iters   int
	elapsed time.Duration
}

func rosterKey(ids []string) string { return strings.Join(ids, ",") }

func printStats(label string, results []runResult, runs int) {
	scores := map[int]int{}
	rosters := map[string]int{}
	var totalTime time.Duration
	var totalIters int

	for _, r := range results {
		totalTime += r.elapsed
		totalIters += r.iters
		scores[r.score]++
		rosters[rosterKey(r.roster)]++
	}

	fmt.Printf("--- %s ---\n", label)
	if len(results) == 0 {
		fmt.Printf("  no feasible result in %d runs\n\n", runs)
		return
	}
	fmt.Printf("  feasible: %d/%d runs\n", len(results), runs)
	fmt.Printf("  avg time: %v\n", totalTime/time.Duration(len(results)))
	fmt.Printf("  avg iterations: %.0f\n", float64(totalIters)/float64(len(results)))

	var scoreList []struct {
		score int
		count int
	}
	for s, c := range scores {
		scoreList = append(scoreList, struct {
			score int
			count int
		}{s, c})
	}
	sort.Slice(scoreList, func(i, j int) bool { return scoreList[i].score > scoreList[j].score })

	fmt.Printf("  score distribution:\n")
	for _, sc := range scoreList {
		fmt.Printf("    score %d: %d/%d runs (%.0f%%)\n", sc.score, sc.count, runs, float64(sc.count)/float64(runs)*100)
	}
	fmt.Printf("  unique rosters seen: %d\n\n", len(rosters))
}

func genPool(rng *rand.Rand, n int) opt.Pool {
	costs := map[string]int{}
	scores := map[string]int{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%03d", i)
		costs[id] = 5000 + rng.Intn(45000)
		scores[id] = 10 + rng.Intn(90)
	}
	return opt.BuildPool(costs, scores, 0)
}

func main() {
	n := flag.Int("n", 20, "candidates per generated pool")
	k := flag.Int("k", 5, "roster size")
	budgetPct := flag.Float64("budget", 0.6, "budget as a fraction of mean roster cost")
	runs := flag.Int("runs", 20, "solver runs per strategy")
	seed := flag.Int64("seed", 31337, "base rng seed")
	threshold := flag.Float64("threshold", 0.9, "sample threshold as a fraction of the exhaustive best")
	maxIters := flag.Int("iters", 100000, "sample iteration cap")
	flag.Parse()

	if *n < 1 || *k < 1 || *k > *n {
		fmt.Fprintf(os.Stderr, "invalid pool shape: n=%d k=%d (need 1 <= k <= n)\n", *n, *k)
		os.Exit(1)
	}
	if *runs < 1 {
		fmt.Fprintf(os.Stderr, "runs must be >= 1, got %d\n", *runs)
		os.Exit(1)
	}

	ctx := context.Background()

	// One fixed pool per run index so all strategies see identical inputs.
	pools := make([]opt.Pool, *runs)
	budgets := make([]int, *runs)
	for run := 0; run < *runs; run++ {
		rng := rand.New(rand.NewSource(*seed + int64(run)))
		pools[run] = genPool(rng, *n)
		avg := 0
		for _, c := range pools[run].Candidates {
			avg += c.Cost
		}
		avg /= pools[run].Len()
		budgets[run] = int(float64(avg*(*k)) * *budgetPct)
	}

	fmt.Printf("Pool: n=%d k=%d budget=%.0f%% runs=%d\n\n", *n, *k, *budgetPct*100, *runs)

	// Exhaustive first; its best score anchors the sample threshold.
	bestByRun := make([]int, *runs)
	var refReport opt.Report
	for _, strategy := range []string{opt.StrategyExhaustive, opt.StrategyHillClimb, opt.StrategySample} {
		var results []runResult
		var last opt.SolveMetrics
		for run := 0; run < *runs; run++ {
			c := opt.Constraint{K: *k, Budget: budgets[run]}
			params := opt.Params{Strategy: strategy, Constraint: c, Seed: *seed + int64(run)}
			if strategy == opt.StrategySample {
				params.Threshold = int(float64(bestByRun[run]) * *threshold)
				params.MaxIterations = *maxIters
			}
			start := time.Now()
			res, err := opt.Solve(ctx, pools[run], params)
			elapsed := time.Since(start)
			last = opt.SolveMetrics{DurationMs: elapsed.Milliseconds()}
			if err != nil {
				last.Err = err.Error()
				continue
			}
			if strategy == opt.StrategyExhaustive {
				bestByRun[run] = res.Roster.TotalScore
				if run == 0 {
					refReport = opt.BuildReport(pools[run], res)
				}
			}
			last.Iterations = res.Iterations
			last.BestScore = res.Roster.TotalScore
			last.BestCost = res.Roster.TotalCost
			last.Incomplete = res.Incomplete
			results = append(results, runResult{res.Roster.TotalScore, res.Roster.IDs, res.Iterations, elapsed})
		}
		opt.RecordMetrics("tune", "generated", strategy, last)
		printStats(strategy, results, *runs)
	}

	if len(refReport.Lines) > 0 {
		fmt.Println("reference roster (exhaustive, run 0):")
		fmt.Print(refReport.String())
		fmt.Println()
	}

	fmt.Println("last-run metrics:")
	for strategy, m := range opt.GetMetrics("tune", "generated") {
		fmt.Printf("  %-10s iters=%d score=%d cost=%d ms=%d incomplete=%v err=%q\n",
			strategy, m.Iterations, m.BestScore, m.BestCost, m.DurationMs, m.Incomplete, m.Err)
	}
}
