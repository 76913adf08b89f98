package opt

import "sync"

// SolveMetrics summarizes one solve run for admin views and tuning.
type SolveMetrics struct {
	Iterations int
	BestScore  int
	BestCost   int
	DurationMs int64
	Incomplete bool
	Err        string
}

type key struct {
	Tenant   string
	Tour     string
	Strategy string
}

var (
	mu    sync.Mutex
	store = map[key]SolveMetrics{}
)

// RecordMetrics keeps the latest metrics per (tenant, tour, strategy).
func RecordMetrics(tenant, tour, strategy string, m SolveMetrics) {
	mu.Lock()
	store[key{Tenant: tenant, Tour: tour, Strategy: strategy}] = m
	mu.Unlock()
}

// GetMetrics returns the recorded metrics for a tenant/tour keyed by strategy.
func GetMetrics(tenant, tour string) map[string]SolveMetrics {
	mu.Lock()
	defer mu.Unlock()
	out := map[string]SolveMetrics{}
	for k, v := range store {
		if k.Tenant == tenant && k.Tour == tour {
			out[k.Strategy] = v
		}
	}
	return out
}
