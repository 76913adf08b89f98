package api

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/gorilla/websocket"
)

func dialWS(t *testing.T, s *Server) (*websocket.Conn, func()) {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(s.SolveWSHandler))
    u := "ws" + strings.TrimPrefix(srv.URL, "http")
    c, _, err := websocket.DefaultDialer.Dial(u, nil)
    if err != nil { srv.Close(); t.Fatalf("dial: %v", err) }
    return c, func() { _ = c.Close(); srv.Close() }
}

func readMsg(t *testing.T, c *websocket.Conn) wsMessage {
    t.Helper()
    _ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
    var m wsMessage
    if err := c.ReadJSON(&m); err != nil { t.Fatalf("read: %v", err) }
    return m
}

func TestSolveWSSubscribeStream(t *testing.T) {
    s := newTestServer(t)
    c, done := dialWS(t, s)
    defer done()

    if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil { t.Fatalf("init: %v", err) }
    if m := readMsg(t, c); m.Type != "connection_ack" { t.Fatalf("ack: got %s", m.Type) }

    pl, _ := json.Marshal(map[string]any{"solveId": "s1"})
    if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil { t.Fatalf("subscribe: %v", err) }

    // give the fanout goroutine time to register before publishing
    time.Sleep(50 * time.Millisecond)
    s.Broker.Publish("solve:s1", SSEEvent{Type: "solve.started", Data: map[string]any{"solveId": "s1"}})

    m := readMsg(t, c)
    if m.Type != "next" || m.ID != "1" { t.Fatalf("next: got %+v", m) }
    var body struct {
        Type string         `json:"type"`
        Data map[string]any `json:"data"`
    }
    if err := json.Unmarshal(m.Payload, &body); err != nil { t.Fatalf("payload: %v", err) }
    if body.Type != "solve.started" { t.Fatalf("payload type: %s", body.Type) }
}

func TestSolveWSConcurrentSubscriptions(t *testing.T) {
    s := newTestServer(t)
    c, done := dialWS(t, s)
    defer done()

    if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil { t.Fatalf("init: %v", err) }
    if m := readMsg(t, c); m.Type != "connection_ack" { t.Fatalf("ack: got %s", m.Type) }

    // two fanout goroutines write into the same connection
    for i, solveID := range []string{"s1", "s2"} {
        pl, _ := json.Marshal(map[string]any{"solveId": solveID})
        if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: strings.Repeat("x", i+1), Payload: pl}); err != nil {
            t.Fatalf("subscribe %s: %v", solveID, err)
        }
    }
    time.Sleep(50 * time.Millisecond)

    const perTopic = 20
    for i := 0; i < perTopic; i++ {
        go s.Broker.Publish("solve:s1", SSEEvent{Type: "solve.progress", Data: map[string]any{"n": i}})
        go s.Broker.Publish("solve:s2", SSEEvent{Type: "solve.progress", Data: map[string]any{"n": i}})
    }

    // every frame must decode cleanly despite the interleaved writers; the
    // broker may drop events under load, so require only what the channel
    // buffers guarantee
    got := 0
    for got < 10 {
        m := readMsg(t, c)
        if m.Type != "next" { t.Fatalf("got %s frame", m.Type) }
        got++
    }
}

func TestSolveWSSubscribeRequiresTarget(t *testing.T) {
    s := newTestServer(t)
    c, done := dialWS(t, s)
    defer done()

    if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil { t.Fatalf("init: %v", err) }
    if m := readMsg(t, c); m.Type != "connection_ack" { t.Fatalf("ack: got %s", m.Type) }

    if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: []byte(`{}`)}); err != nil { t.Fatalf("subscribe: %v", err) }
    if m := readMsg(t, c); m.Type != "error" { t.Fatalf("want error frame, got %s", m.Type) }
    if m := readMsg(t, c); m.Type != "complete" { t.Fatalf("want complete frame, got %s", m.Type) }
}
