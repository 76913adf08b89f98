package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"courtpick/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Ping reports database connectivity for readiness checks.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies *.sql files from dir in lexical order. Dev helper; a real
// deployment would run migrations out of band.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(sqlBytes)); err != nil {
			return err
		}
	}
	return nil
}

func toJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func (p *Postgres) SaveRegistry(ctx context.Context, reg model.Registry) (model.RegistryOut, error) {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO registries (id, tenant_id, tour, costs, scores)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (tenant_id, tour)
		DO UPDATE SET costs = EXCLUDED.costs, scores = EXCLUDED.scores`,
		reg.ID, reg.TenantID, reg.Tour, toJSON(reg.Costs), toJSON(reg.Scores))
	if err != nil {
		return model.RegistryOut{}, err
	}
	return model.RegistryOut{
		ID: reg.ID, TenantID: reg.TenantID, Tour: reg.Tour,
		CostCount: len(reg.Costs), ScoreCount: len(reg.Scores),
	}, nil
}

func (p *Postgres) GetRegistry(ctx context.Context, tenantID, tour string) (model.Registry, error) {
	var reg model.Registry
	var costs, scores []byte
	var created time.Time
	err := p.db.QueryRowContext(ctx, `
		SELECT id::text, costs, scores, created_at FROM registries
		WHERE tenant_id=$1 AND tour=$2`, tenantID, tour).
		Scan(&reg.ID, &costs, &scores, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Registry{}, ErrNotFound
	}
	if err != nil {
		return model.Registry{}, err
	}
	reg.TenantID = tenantID
	reg.Tour = tour
	reg.CreatedAt = created.UTC().Format(time.RFC3339)
	if err := json.Unmarshal(costs, &reg.Costs); err != nil {
		return model.Registry{}, err
	}
	if err := json.Unmarshal(scores, &reg.Scores); err != nil {
		return model.Registry{}, err
	}
	return reg, nil
}

func (p *Postgres) ListRegistries(ctx context.Context, tenantID, cursor string, limit int) ([]model.RegistryOut, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, tour, costs, scores, created_at FROM registries
		WHERE tenant_id=$1 AND tour > $2 ORDER BY tour LIMIT $3`,
		tenantID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []model.RegistryOut{}
	for rows.Next() {
		var r model.RegistryOut
		var costs, scores []byte
		var created time.Time
		if err := rows.Scan(&r.ID, &r.Tour, &costs, &scores, &created); err != nil {
			return nil, "", err
		}
		r.TenantID = tenantID
		r.CreatedAt = created.UTC().Format(time.RFC3339)
		var cm, sm map[string]int
		_ = json.Unmarshal(costs, &cm)
		_ = json.Unmarshal(scores, &sm)
		r.CostCount, r.ScoreCount = len(cm), len(sm)
		out = append(out, r)
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].Tour
	}
	return out, next, rows.Err()
}

func (p *Postgres) SaveSolve(ctx context.Context, sv model.Solve) error {
	if sv.ID == "" {
		sv.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO solves (id, tenant_id, tour, strategy, status, k, budget, min_score,
			roster, total_cost, total_score, iterations, duration_ms, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status, roster=EXCLUDED.roster,
			total_cost=EXCLUDED.total_cost, total_score=EXCLUDED.total_score,
			iterations=EXCLUDED.iterations, duration_ms=EXCLUDED.duration_ms, error=EXCLUDED.error`,
		sv.ID, sv.TenantID, sv.Tour, sv.Strategy, sv.Status, sv.K, sv.Budget, sv.MinScore,
		toJSON(sv.Roster), sv.TotalCost, sv.TotalScore, sv.Iterations, sv.DurationMs, nullIfEmpty(sv.Error))
	return err
}

func (p *Postgres) GetSolve(ctx context.Context, tenantID, id string) (model.Solve, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id::text, tour, strategy, status, k, budget, min_score,
			roster, total_cost, total_score, iterations, duration_ms, COALESCE(error,''), created_at
		FROM solves WHERE tenant_id=$1 AND id::text=$2`, tenantID, id)
	sv, err := scanSolve(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Solve{}, ErrNotFound
	}
	if err != nil {
		return model.Solve{}, err
	}
	sv.TenantID = tenantID
	return sv, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSolve(row rowScanner) (model.Solve, error) {
	var sv model.Solve
	var roster []byte
	var created time.Time
	err := row.Scan(&sv.ID, &sv.Tour, &sv.Strategy, &sv.Status, &sv.K, &sv.Budget, &sv.MinScore,
		&roster, &sv.TotalCost, &sv.TotalScore, &sv.Iterations, &sv.DurationMs, &sv.Error, &created)
	if err != nil {
		return model.Solve{}, err
	}
	sv.CreatedAt = created.UTC().Format(time.RFC3339)
	if len(roster) > 0 {
		_ = json.Unmarshal(roster, &sv.Roster)
	}
	return sv, nil
}

func (p *Postgres) ListSolves(ctx context.Context, tenantID, cursor string, limit int) ([]model.Solve, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, tour, strategy, status, k, budget, min_score,
			roster, total_cost, total_score, iterations, duration_ms, COALESCE(error,''), created_at
		FROM solves WHERE tenant_id=$1 AND id::text > $2 ORDER BY id::text LIMIT $3`,
		tenantID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []model.Solve{}
	for rows.Next() {
		sv, err := scanSolve(rows)
		if err != nil {
			return nil, "", err
		}
		sv.TenantID = tenantID
		out = append(out, sv)
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, rows.Err()
}

func (p *Postgres) SaveSolveMetrics(ctx context.Context, tenantID, tour, strategy string, metrics map[string]any) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO solve_metrics (tenant_id, tour, strategy, metrics, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (tenant_id, tour, strategy)
		DO UPDATE SET metrics = EXCLUDED.metrics, updated_at = now()`,
		tenantID, tour, strategy, toJSON(metrics))
	return err
}

func (p *Postgres) ListSolveMetrics(ctx context.Context, tenantID, tour, strategy string) ([]map[string]any, error) {
	q := `SELECT strategy, metrics FROM solve_metrics WHERE tenant_id=$1 AND tour=$2`
	args := []any{tenantID, tour}
	if strategy != "" {
		q += ` AND strategy=$3`
		args = append(args, strategy)
	}
	rows, err := p.db.QueryContext(ctx, q+` ORDER BY strategy`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []map[string]any{}
	for rows.Next() {
		var strat string
		var raw []byte
		if err := rows.Scan(&strat, &raw); err != nil {
			return nil, err
		}
		m := map[string]any{}
		_ = json.Unmarshal(raw, &m)
		m["strategy"] = strat
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	s := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.TenantID, s.URL, toJSON(s.Events), s.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return s, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, url, events, secret FROM subscriptions
		WHERE tenant_id=$1 AND events @> $2`, tenantID, toJSON([]string{eventType}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Subscription
	for rows.Next() {
		s := model.Subscription{TenantID: tenantID}
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(events, &s.Events)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, url, events, secret FROM subscriptions
		WHERE tenant_id=$1 AND id::text > $2 ORDER BY id::text LIMIT $3`,
		tenantID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []model.Subscription{}
	for rows.Next() {
		s := model.Subscription{TenantID: tenantID}
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, "", err
		}
		_ = json.Unmarshal(events, &s.Events)
		out = append(out, s)
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE tenant_id=$1 AND id::text=$2`, tenantID, id)
	return err
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, tenantID, nullIfEmpty(subscriptionID), eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, tenant_id, COALESCE(subscription_id::text,''), event_type, url, secret, payload, status, attempts
		FROM webhook_deliveries
		WHERE status='pending' AND next_attempt_at <= now()
		ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx, `
			UPDATE webhook_deliveries SET status='delivered', attempts=attempts+1,
				last_error=NULL, response_code=$2, latency_ms=$3, delivered_at=now()
			WHERE id::text=$1`, id, responseCode, latencyMs)
		return err
	}
	_, err := p.db.ExecContext(ctx, `
		UPDATE webhook_deliveries SET attempts=attempts+1, last_error=$2,
			response_code=$3, latency_ms=$4, next_attempt_at=COALESCE($5, next_attempt_at)
		WHERE id::text=$1`, id, nullIfEmpty(lastError), responseCode, latencyMs, nextAttemptAt)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE webhook_deliveries SET status='failed', attempts=attempts+1,
			last_error=$2, response_code=$3, latency_ms=$4
		WHERE id::text=$1`, id, nullIfEmpty(lastError), responseCode, latencyMs)
	return err
}

func (p *Postgres) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id::text, event_type, url, status, attempts, COALESCE(last_error,''), COALESCE(response_code,0), COALESCE(latency_ms,0)
		FROM webhook_deliveries WHERE tenant_id=$1 AND id::text > $2`
	args := []any{tenantID, cursor}
	if status != "" {
		q += ` AND status=$3`
		args = append(args, status)
	}
	q += ` ORDER BY id::text LIMIT ` + strconv.Itoa(limit+1)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []map[string]any{}
	for rows.Next() {
		var id, eventType, url, st, lastErr string
		var attempts, code, latency int
		if err := rows.Scan(&id, &eventType, &url, &st, &attempts, &lastErr, &code, &latency); err != nil {
			return nil, "", err
		}
		out = append(out, map[string]any{
			"id": id, "eventType": eventType, "url": url,
			"status": st, "attempts": attempts,
			"lastError": lastErr, "responseCode": code, "latencyMs": latency,
		})
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1]["id"].(string)
	}
	return out, next, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
