//go:build redis_integration

package api

import (
    "os"
    "testing"
    "time"
)

// Verifies a publish arriving after a client unsubscribed does not touch the
// released channel: the pump goroutine owns the close, Unsubscribe only tears
// down the PubSub.
func TestRedisBrokerUnsubscribeThenPublish(t *testing.T) {
    url := os.Getenv("REDIS_URL")
    if url == "" { t.Skip("REDIS_URL not set; skipping integration test") }
    b, err := NewRedisBroker(url)
    if err != nil { t.Fatalf("NewRedisBroker: %v", err) }

    ch := b.Subscribe("solve:it1")
    b.Publish("solve:it1", SSEEvent{Type: "solve.started", Data: map[string]any{"solveId": "it1"}})
    select {
    case got := <-ch:
        if got.Type != "solve.started" { t.Fatalf("got type %s", got.Type) }
    case <-time.After(2 * time.Second):
        t.Fatal("timeout waiting for event")
    }

    b.Unsubscribe("solve:it1", ch)

    // must not panic a send on a closed channel inside the pump
    b.Publish("solve:it1", SSEEvent{Type: "solve.completed", Data: map[string]any{"solveId": "it1"}})

    // the pump closes ch once the PubSub shuts down
    deadline := time.After(2 * time.Second)
    for {
        select {
        case _, ok := <-ch:
            if !ok { return }
        case <-deadline:
            t.Fatal("channel not closed after unsubscribe")
        }
    }
}

// A second subscriber on the same topic keeps working after the first leaves.
func TestRedisBrokerIndependentSubscribers(t *testing.T) {
    url := os.Getenv("REDIS_URL")
    if url == "" { t.Skip("REDIS_URL not set; skipping integration test") }
    b, err := NewRedisBroker(url)
    if err != nil { t.Fatalf("NewRedisBroker: %v", err) }

    ch1 := b.Subscribe("tenant:it2")
    ch2 := b.Subscribe("tenant:it2")
    b.Unsubscribe("tenant:it2", ch1)

    b.Publish("tenant:it2", SSEEvent{Type: "solve.completed", Data: map[string]any{"solveId": "it2"}})
    select {
    case got := <-ch2:
        if got.Type != "solve.completed" { t.Fatalf("got type %s", got.Type) }
    case <-time.After(2 * time.Second):
        t.Fatal("remaining subscriber should still receive events")
    }
    b.Unsubscribe("tenant:it2", ch2)
}
