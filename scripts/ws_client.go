// Package main runs a demo WebSocket client for solve events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Upload a small registry to solve against
	regBody := []byte(`{"tenantId":"t_demo","tour":"demo-tour","costs":{"A":30000,"B":40000,"C":20000,"D":10000},"scores":{"A":60,"B":70,"C":50,"D":20}}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/registries", bytes.NewReader(regBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "admin")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	_ = resp.Body.Close()
	log.Printf("registry upload: %s", resp.Status)

	// Connect WS and subscribe to all of the tenant's solve events before
	// triggering the solve, so nothing is missed.
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/solves/events/ws"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	pl, _ := json.Marshal(map[string]any{"tenant": true})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger a solve
	time.Sleep(500 * time.Millisecond)
	solveBody := []byte(`{"tenantId":"t_demo","tour":"demo-tour","strategy":"exhaustive","k":2,"budget":60000}`)
	sReq, _ := http.NewRequest(http.MethodPost, base+"/v1/solve", bytes.NewReader(solveBody))
	sReq.Header.Set("Content-Type", "application/json")
	sReq.Header.Set("X-Tenant-Id", "t_demo")
	sReq.Header.Set("X-Role", "admin")
	sResp, err := http.DefaultClient.Do(sReq)
	if err != nil {
		log.Fatal(err)
	}
	_ = sResp.Body.Close()
	log.Printf("solve: %s", sResp.Status)

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
