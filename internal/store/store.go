package store

import (
	"context"
	"errors"
	"time"

	"courtpick/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Registries
	SaveRegistry(ctx context.Context, reg model.Registry) (model.RegistryOut, error)
	GetRegistry(ctx context.Context, tenantID, tour string) (model.Registry, error)
	ListRegistries(ctx context.Context, tenantID, cursor string, limit int) ([]model.RegistryOut, string, error)

	// Solves
	SaveSolve(ctx context.Context, sv model.Solve) error
	GetSolve(ctx context.Context, tenantID, id string) (model.Solve, error)
	ListSolves(ctx context.Context, tenantID, cursor string, limit int) ([]model.Solve, string, error)

	// Solve metrics for admin views
	SaveSolveMetrics(ctx context.Context, tenantID, tour, strategy string, metrics map[string]any) error
	ListSolveMetrics(ctx context.Context, tenantID, tour, strategy string) ([]map[string]any, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
	ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error)
}

// WebhookDelivery is one queued outbound delivery.
type WebhookDelivery struct {
	ID             string
	TenantID       string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string
	Attempts       int
}

var ErrNotFound = errors.New("not found")
