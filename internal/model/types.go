package model

// Core API types for the roster optimization service.

// RegistryUpload is the write model for a candidate registry: two id-keyed
// integer tables produced by the upstream ingestion pipeline. Ids are opaque,
// already-normalized strings.
type RegistryUpload struct {
	TenantID string         `json:"tenantId,omitempty"`
	Tour     string         `json:"tour"`
	Costs    map[string]int `json:"costs"`
	Scores   map[string]int `json:"scores"`
}

// Registry is a stored registry including both tables.
type Registry struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	Tour      string         `json:"tour"`
	Costs     map[string]int `json:"costs"`
	Scores    map[string]int `json:"scores"`
	CreatedAt string         `json:"createdAt,omitempty"`
}

// RegistryOut is the list read model: table sizes instead of full tables.
type RegistryOut struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	Tour       string `json:"tour"`
	CostCount  int    `json:"costCount"`
	ScoreCount int    `json:"scoreCount"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// SolveRequest configures one optimization run. Strategy is one of
// exhaustive, hillclimb, sample.
type SolveRequest struct {
	TenantID      string `json:"tenantId,omitempty"`
	Tour          string `json:"tour"`
	Strategy      string `json:"strategy,omitempty"`
	K             int    `json:"k"`
	Budget        int    `json:"budget"`
	MinScore      int    `json:"minScore,omitempty"`
	Threshold     int    `json:"threshold,omitempty"`
	MaxIterations int    `json:"maxIterations,omitempty"`
	Seed          int64  `json:"seed,omitempty"`
	SeedRetries   int    `json:"seedRetries,omitempty"`
	MaxMoves      int    `json:"maxMoves,omitempty"`
	TimeBudgetMs  int    `json:"timeBudgetMs,omitempty"`
}

// RosterEntry is the per-candidate audit line of a winning roster.
type RosterEntry struct {
	ID    string `json:"id"`
	Cost  int    `json:"cost"`
	Score int    `json:"score"`
}

// Solve is a persisted optimization run and its outcome.
type Solve struct {
	ID         string        `json:"id"`
	TenantID   string        `json:"tenantId"`
	Tour       string        `json:"tour"`
	Strategy   string        `json:"strategy"`
	Status     string        `json:"status"` // completed, incomplete, failed
	K          int           `json:"k"`
	Budget     int           `json:"budget"`
	MinScore   int           `json:"minScore,omitempty"`
	Roster     []RosterEntry `json:"roster,omitempty"`
	TotalCost  int           `json:"totalCost,omitempty"`
	TotalScore int           `json:"totalScore,omitempty"`
	Iterations int           `json:"iterations,omitempty"`
	DurationMs int64         `json:"durationMs,omitempty"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  string        `json:"createdAt,omitempty"`
}

type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
