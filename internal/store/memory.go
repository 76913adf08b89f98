package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"courtpick/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu         sync.Mutex
	registries map[string]model.Registry // tenant|tour -> registry
	regOrder   map[string][]string       // tenant -> tour keys in insertion order
	solves     map[string]model.Solve    // id -> solve
	solvesTen  map[string][]string       // tenant -> solve ids
	subs       map[string][]model.Subscription
	deliveries map[string]*memDelivery
	delivTen   map[string][]string
	metrics    map[string][]map[string]any // tenant|tour -> items
}

func NewMemory() *Memory {
	return &Memory{
		registries: map[string]model.Registry{},
		regOrder:   map[string][]string{},
		solves:     map[string]model.Solve{},
		solvesTen:  map[string][]string{},
		subs:       map[string][]model.Subscription{},
		deliveries: map[string]*memDelivery{},
		delivTen:   map[string][]string{},
		metrics:    map[string][]map[string]any{},
	}
}

// memDelivery augments WebhookDelivery with scheduling/metrics state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
	DeliveredAt   *time.Time
}

func regKey(tenantID, tour string) string { return tenantID + "|" + tour }

func (m *Memory) SaveRegistry(ctx context.Context, reg model.Registry) (model.RegistryOut, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	if reg.CreatedAt == "" {
		reg.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	k := regKey(reg.TenantID, reg.Tour)
	if _, exists := m.registries[k]; !exists {
		m.regOrder[reg.TenantID] = append(m.regOrder[reg.TenantID], reg.Tour)
	}
	m.registries[k] = reg
	return model.RegistryOut{
		ID: reg.ID, TenantID: reg.TenantID, Tour: reg.Tour,
		CostCount: len(reg.Costs), ScoreCount: len(reg.Scores), CreatedAt: reg.CreatedAt,
	}, nil
}

func (m *Memory) GetRegistry(ctx context.Context, tenantID, tour string) (model.Registry, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	reg, ok := m.registries[regKey(tenantID, tour)]
	if !ok { return model.Registry{}, ErrNotFound }
	return reg, nil
}

func (m *Memory) ListRegistries(ctx context.Context, tenantID, cursor string, limit int) ([]model.RegistryOut, string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	tours := m.regOrder[tenantID]
	start := 0
	if cursor != "" {
		for i, tr := range tours {
			if tr == cursor { start = i + 1; break }
		}
	}
	if limit <= 0 { limit = 100 }
	out := []model.RegistryOut{}
	next := ""
	for i := start; i < len(tours) && len(out) < limit; i++ {
		reg := m.registries[regKey(tenantID, tours[i])]
		out = append(out, model.RegistryOut{
			ID: reg.ID, TenantID: reg.TenantID, Tour: reg.Tour,
			CostCount: len(reg.Costs), ScoreCount: len(reg.Scores), CreatedAt: reg.CreatedAt,
		})
		next = tours[i]
	}
	if start+len(out) >= len(tours) { next = "" }
	return out, next, nil
}

func (m *Memory) SaveSolve(ctx context.Context, sv model.Solve) error {
	m.mu.Lock(); defer m.mu.Unlock()
	if _, exists := m.solves[sv.ID]; !exists {
		m.solvesTen[sv.TenantID] = append(m.solvesTen[sv.TenantID], sv.ID)
	}
	m.solves[sv.ID] = sv
	return nil
}

func (m *Memory) GetSolve(ctx context.Context, tenantID, id string) (model.Solve, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	sv, ok := m.solves[id]
	if !ok || sv.TenantID != tenantID { return model.Solve{}, ErrNotFound }
	return sv, nil
}

func (m *Memory) ListSolves(ctx context.Context, tenantID, cursor string, limit int) ([]model.Solve, string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	ids := m.solvesTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor { start = i + 1; break }
		}
	}
	if limit <= 0 { limit = 100 }
	out := []model.Solve{}
	next := ""
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.solves[ids[i]])
		next = ids[i]
	}
	if start+len(out) >= len(ids) { next = "" }
	return out, next, nil
}

func (m *Memory) SaveSolveMetrics(ctx context.Context, tenantID, tour, strategy string, metrics map[string]any) error {
	m.mu.Lock(); defer m.mu.Unlock()
	k := regKey(tenantID, tour)
	items := m.metrics[k]
	met := map[string]any{"strategy": strategy}
	for mk, mv := range metrics { met[mk] = mv }
	replaced := false
	for i := range items {
		if items[i]["strategy"] == strategy { items[i] = met; replaced = true; break }
	}
	if !replaced { items = append(items, met) }
	m.metrics[k] = items
	return nil
}

func (m *Memory) ListSolveMetrics(ctx context.Context, tenantID, tour, strategy string) ([]map[string]any, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	items := m.metrics[regKey(tenantID, tour)]
	if strategy == "" {
		return append([]map[string]any(nil), items...), nil
	}
	out := []map[string]any{}
	for _, it := range items {
		if it["strategy"] == strategy { out = append(out, it) }
	}
	return out, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	s := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[req.TenantID] = append(m.subs[req.TenantID], s)
	return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	var out []model.Subscription
	for _, s := range m.subs[tenantID] {
		for _, e := range s.Events {
			if e == eventType { out = append(out, s); break }
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	list := m.subs[tenantID]
	start := 0
	if cursor != "" {
		for i := range list {
			if list[i].ID == cursor { start = i + 1; break }
		}
	}
	if limit <= 0 { limit = 100 }
	end := start + limit
	if end > len(list) { end = len(list) }
	items := append([]model.Subscription(nil), list[start:end]...)
	next := ""
	if end < len(list) { next = list[end-1].ID }
	return items, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	m.mu.Lock(); defer m.mu.Unlock()
	arr := m.subs[tenantID]
	out := make([]model.Subscription, 0, len(arr))
	for _, s := range arr {
		if s.ID != id { out = append(out, s) }
	}
	m.subs[tenantID] = out
	return nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID: id, TenantID: tenantID, SubscriptionID: subscriptionID,
			EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: "pending",
		},
		NextAttemptAt: time.Now(),
	}
	m.delivTen[tenantID] = append(m.delivTen[tenantID], id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	if limit <= 0 { limit = 50 }
	now := time.Now()
	out := []WebhookDelivery{}
	for _, d := range m.deliveries {
		if d.Status != "pending" || d.NextAttemptAt.After(now) { continue }
		out = append(out, d.WebhookDelivery)
		if len(out) >= limit { break }
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock(); defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok { return ErrNotFound }
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		now := time.Now()
		d.DeliveredAt = &now
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock(); defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok { return ErrNotFound }
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	ids := m.delivTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor { start = i + 1; break }
		}
	}
	if limit <= 0 { limit = 100 }
	out := []map[string]any{}
	next := ""
	i := start
	for ; i < len(ids) && len(out) < limit; i++ {
		d := m.deliveries[ids[i]]
		if status != "" && d.Status != status { continue }
		out = append(out, map[string]any{
			"id": d.ID, "eventType": d.EventType, "url": d.URL,
			"status": d.Status, "attempts": d.Attempts,
			"lastError": d.LastError, "responseCode": d.ResponseCode, "latencyMs": d.LatencyMs,
		})
		next = ids[i]
	}
	if i >= len(ids) { next = "" }
	return out, next, nil
}
