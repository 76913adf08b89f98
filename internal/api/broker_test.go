package api

import (
    "testing"
    "time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
    b := NewBroker()
    topic := "solve:s1"
    ch := b.Subscribe(topic)
    defer func() { recover() }() // ignore close panic if already closed

    evt := SSEEvent{Type: "test.event", Data: map[string]any{"x": 1}}
    b.Publish(topic, evt)

    select {
    case got := <-ch:
        if got.Type != evt.Type { t.Fatalf("got type %s, want %s", got.Type, evt.Type) }
        if got.Data["x"].(int) != 1 { t.Fatalf("bad payload: %+v", got.Data) }
    case <-time.After(200 * time.Millisecond):
        t.Fatal("timeout waiting for event")
    }

    b.Unsubscribe(topic, ch)
    select {
    case _, ok := <-ch:
        if ok { t.Fatal("channel should be closed after unsubscribe") }
    case <-time.After(50 * time.Millisecond):
        // acceptable if already drained and closed
    }
}

func TestBrokerFanout(t *testing.T) {
    b := NewBroker()
    ch1 := b.Subscribe("tenant:t1")
    ch2 := b.Subscribe("tenant:t1")
    other := b.Subscribe("tenant:t2")

    b.Publish("tenant:t1", SSEEvent{Type: "solve.completed", Data: map[string]any{"solveId": "s1"}})

    for i, ch := range []chan SSEEvent{ch1, ch2} {
        select {
        case got := <-ch:
            if got.Type != "solve.completed" { t.Fatalf("sub %d: got type %s", i, got.Type) }
        case <-time.After(200 * time.Millisecond):
            t.Fatalf("sub %d: timeout", i)
        }
    }
    select {
    case evt := <-other:
        t.Fatalf("t2 subscriber should not receive t1 events, got %+v", evt)
    case <-time.After(50 * time.Millisecond):
    }
}
