package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"courtpick/internal/metrics"
	"courtpick/internal/model"
	"courtpick/internal/opt"
	"courtpick/internal/webhooks"
)

// RegistriesHandler handles POST/GET /v1/registries
func (s *Server) RegistriesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.RegistryUpload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateRegistryUpload(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid registry", err.Error(), r.URL.Path)
			return
		}
		if req.TenantID == "" { _, req.TenantID = s.withTenant(r) }
		out, err := s.Store.SaveRegistry(r.Context(), model.Registry{
			TenantID: req.TenantID,
			Tour:     req.Tour,
			Costs:    req.Costs,
			Scores:   req.Scores,
		})
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save registry failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	case http.MethodGet:
		_, tenant := s.withTenant(r)
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
		items, next, err := s.Store.ListRegistries(r.Context(), tenant, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List registries failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SolveHandler handles POST /v1/solve: loads the tour registry, builds the
// candidate pool, runs the requested solver, persists and publishes the
// outcome.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !(p.IsAdmin() || p.Role == "analyst") { writeProblem(w, 403, "Forbidden", "analyst or admin required", r.URL.Path); return }
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" { _, req.TenantID = s.withTenant(r) }
	if req.Strategy == "" { req.Strategy = s.Cfg.DefaultStrategy }

	reg, err := s.Store.GetRegistry(r.Context(), req.TenantID, req.Tour)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Registry not found", err.Error(), r.URL.Path)
		return
	}
	pool := opt.BuildPool(reg.Costs, reg.Scores, req.MinScore)
	if req.Strategy == opt.StrategyExhaustive && s.Cfg.MaxExhaustivePool > 0 && pool.Len() > s.Cfg.MaxExhaustivePool {
		writeProblem(w, http.StatusUnprocessableEntity, "Pool too large",
			fmt.Sprintf("exhaustive search limited to %d candidates, pool has %d", s.Cfg.MaxExhaustivePool, pool.Len()), r.URL.Path)
		return
	}

	id := uuid.New().String()
	s.publishSolveEvent(req.TenantID, id, "solve.started", map[string]any{
		"solveId": id, "tour": req.Tour, "strategy": req.Strategy, "k": req.K, "budget": req.Budget,
	})
	s.publishSolveEvent(req.TenantID, id, "solve.progress", map[string]any{
		"solveId": id, "phase": "pool-built", "poolSize": pool.Len(),
	})

	ctx := r.Context()
	if req.TimeBudgetMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeBudgetMs)*time.Millisecond)
		defer cancel()
	}
	start := time.Now()
	res, solveErr := opt.Solve(ctx, pool, opt.Params{
		Strategy: req.Strategy,
		Constraint: opt.Constraint{K: req.K, Budget: req.Budget, MinScore: req.MinScore},
		Seed:          req.Seed,
		SeedRetries:   req.SeedRetries,
		MaxMoves:      req.MaxMoves,
		Threshold:     req.Threshold,
		MaxIterations: req.MaxIterations,
	})
	elapsed := time.Since(start)

	sv := model.Solve{
		ID:       id,
		TenantID: req.TenantID,
		Tour:     req.Tour,
		Strategy: req.Strategy,
		K:        req.K,
		Budget:   req.Budget,
		MinScore: req.MinScore,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	// A threshold miss that still found a feasible roster is reported as an
	// incomplete solve carrying that best roster.
	var te *opt.ThresholdError
	if errors.As(solveErr, &te) && te.Best != nil {
		res = *te.Best
		res.Incomplete = true
		solveErr = nil
	}
	if solveErr != nil {
		sv.Status = "failed"
		sv.Error = solveErr.Error()
	} else {
		sv.Status = "completed"
		if res.Incomplete { sv.Status = "incomplete" }
		sv.Iterations = res.Iterations
		sv.TotalCost = res.Roster.TotalCost
		sv.TotalScore = res.Roster.TotalScore
		sv.Roster = rosterEntries(pool, res.Roster)
	}
	if err := s.Store.SaveSolve(r.Context(), sv); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save solve failed", err.Error(), r.URL.Path)
		return
	}
	_ = s.Store.SaveSolveMetrics(r.Context(), req.TenantID, req.Tour, req.Strategy, map[string]any{
		"iterations": sv.Iterations,
		"durationMs": sv.DurationMs,
		"bestScore":  sv.TotalScore,
		"bestCost":   sv.TotalCost,
		"status":     sv.Status,
	})
	opt.RecordMetrics(req.TenantID, req.Tour, req.Strategy, opt.SolveMetrics{
		Iterations: sv.Iterations,
		BestScore:  sv.TotalScore,
		BestCost:   sv.TotalCost,
		DurationMs: sv.DurationMs,
		Incomplete: res.Incomplete,
		Err:        sv.Error,
	})
	metrics.SolveRuns.WithLabelValues(req.Strategy, sv.Status).Inc()
	metrics.SolveDuration.WithLabelValues(req.Strategy).Observe(elapsed.Seconds())
	metrics.SolveIterations.WithLabelValues(req.Strategy).Observe(float64(sv.Iterations))

	if solveErr != nil {
		data := map[string]any{"solveId": id, "tour": req.Tour, "strategy": req.Strategy, "error": solveErr.Error()}
		s.publishSolveEvent(req.TenantID, id, webhooks.EventSolveFailed, data)
		s.Pub.Emit(r.Context(), req.TenantID, webhooks.EventSolveFailed, data)
		status := http.StatusUnprocessableEntity
		if errors.Is(solveErr, opt.ErrCancelled) { status = http.StatusRequestTimeout }
		writeProblem(w, status, "Solve failed", solveErr.Error(), r.URL.Path)
		return
	}
	data := map[string]any{
		"solveId": id, "tour": req.Tour, "strategy": req.Strategy,
		"totalScore": sv.TotalScore, "totalCost": sv.TotalCost, "status": sv.Status,
	}
	s.publishSolveEvent(req.TenantID, id, webhooks.EventSolveCompleted, data)
	s.Pub.Emit(r.Context(), req.TenantID, webhooks.EventSolveCompleted, data)
	writeJSON(w, http.StatusOK, sv)
}

// publishSolveEvent fans one event out to both the per-solve and the
// per-tenant topics so clients can subscribe before the solve id exists.
func (s *Server) publishSolveEvent(tenant, solveID, typ string, data map[string]any) {
	evt := SSEEvent{Type: typ, Data: data}
	s.Broker.Publish("solve:"+solveID, evt)
	s.Broker.Publish("tenant:"+tenant, evt)
}

func rosterEntries(pool opt.Pool, ros opt.Roster) []model.RosterEntry {
	byID := map[string]opt.Candidate{}
	for _, c := range pool.Candidates { byID[c.ID] = c }
	out := make([]model.RosterEntry, 0, len(ros.IDs))
	for _, id := range ros.IDs {
		c := byID[id]
		out = append(out, model.RosterEntry{ID: c.ID, Cost: c.Cost, Score: c.Score})
	}
	return out
}

// SolvesIndexHandler handles GET /v1/solves
func (s *Server) SolvesIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/solves" { writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path); return }
	if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
	_, tenant := s.withTenant(r)
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
	items, next, err := s.Store.ListSolves(r.Context(), tenant, cursor, limit)
	if err != nil { writeProblem(w, 500, "List solves failed", err.Error(), r.URL.Path); return }
	writeJSON(w, 200, map[string]any{"items": items, "nextCursor": next})
}

// SolveByIDHandler handles GET /v1/solves/{id} and the SSE stream at
// /v1/solves/{id}/events/stream.
func (s *Server) SolveByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.TrimPrefix(path, "/v1/solves/")
	if rest == path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) > 1 && parts[1] == "events" && len(parts) > 2 && parts[2] == "stream" {
		if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
		flusher, ok := w.(http.Flusher)
		if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		ch := s.Broker.Subscribe("solve:" + id)
		defer s.Broker.Unsubscribe("solve:"+id, ch)
		// initial heartbeat
		fmt.Fprintf(w, "event: heartbeat\n")
		fmt.Fprintf(w, "data: {\"solveId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
		flusher.Flush()
		notify := r.Context().Done()
		for {
			select {
			case <-notify:
				return
			case evt := <-ch:
				b, _ := json.Marshal(evt.Data)
				fmt.Fprintf(w, "event: %s\n", evt.Type)
				fmt.Fprintf(w, "data: %s\n\n", string(b))
				flusher.Flush()
			case <-time.After(15 * time.Second):
				fmt.Fprintf(w, "event: heartbeat\n")
				fmt.Fprintf(w, "data: {\"solveId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
				flusher.Flush()
			}
		}
	}
	if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
	_, tenant := s.withTenant(r)
	sv, err := s.Store.GetSolve(r.Context(), tenant, id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Solve not found", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p := s.getPrincipal(r)
		if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.TenantID == "" { req.TenantID = p.Tenant }
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		p := s.getPrincipal(r)
		if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
		items, next, err := s.Store.ListSubscriptions(r.Context(), p.Tenant, cursor, limit)
		if err != nil { writeProblem(w, 500, "List subscriptions failed", err.Error(), r.URL.Path); return }
		writeJSON(w, 200, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Subscription delete (admin)
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/v1/subscriptions/") { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
	if r.Method != http.MethodDelete { w.WriteHeader(405); return }
	p := s.getPrincipal(r)
	if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if err := s.Store.DeleteSubscription(r.Context(), p.Tenant, id); err != nil { writeProblem(w, 500, "Delete subscription failed", err.Error(), r.URL.Path); return }
	w.WriteHeader(204)
}

// Admin: per-tour solver metrics
func (s *Server) AdminSolveMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/solve-metrics" || r.Method != http.MethodGet { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
	p := s.getPrincipal(r)
	if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
	tour := r.URL.Query().Get("tour")
	strategy := r.URL.Query().Get("strategy")
	items, err := s.Store.ListSolveMetrics(r.Context(), p.Tenant, tour, strategy)
	if err != nil { writeProblem(w, 500, "List metrics failed", err.Error(), r.URL.Path); return }
	writeJSON(w, 200, map[string]any{"items": items})
}

// Admin: webhook deliveries list
func (s *Server) WebhookDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/webhook-deliveries" { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
	p := s.getPrincipal(r)
	if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
	if r.Method != http.MethodGet { w.WriteHeader(405); return }
	status := r.URL.Query().Get("status")
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
	items, next, err := s.Store.ListWebhookDeliveries(r.Context(), p.Tenant, status, cursor, limit)
	if err != nil { writeProblem(w, 500, "List deliveries failed", err.Error(), r.URL.Path); return }
	writeJSON(w, 200, map[string]any{"items": items, "nextCursor": next})
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using Postgres store
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path); return }
	}
	writeJSON(w, 200, map[string]string{"status": "ready"})
}
