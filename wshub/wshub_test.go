package wshub

import (
	"encoding/json"
	"testing"
)

func attachTestClient(t *testing.T, clients map[*Client]bool) *Client {
	t.Helper()
	c := &Client{send: make(chan []byte, 4)}
	clients[c] = true
	return c
}

func receivedKinds(c *Client) []string {
	kinds := []string{}
	for {
		select {
		case payload := <-c.send:
			update := Update{}
			if err := json.Unmarshal(payload, &update); err != nil {
				kinds = append(kinds, "unmarshalable")
				continue
			}
			kinds = append(kinds, update.Kind)
		default:
			return kinds
		}
	}
}

func TestBridgeSkipsOpeningSnapshot(t *testing.T) {
	b := newBridge(nil, "event-1")
	defer b.cancel()
	c := attachTestClient(t, b.clients)

	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello"}})

	got := receivedKinds(c)
	if len(got) != 0 {
		t.Errorf("Bad deliveries for opening snapshot; got %v, want none", got)
	}
}

func TestBridgeSkipsUnchangedSnapshot(t *testing.T) {
	b := newBridge(nil, "event-1")
	defer b.cancel()
	c := attachTestClient(t, b.clients)

	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello"}})
	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello"}})

	got := receivedKinds(c)
	if len(got) != 0 {
		t.Errorf("Bad deliveries for unchanged snapshot; got %v, want none", got)
	}
}

func TestBridgeDeliversChangedSnapshot(t *testing.T) {
	b := newBridge(nil, "event-1")
	defer b.cancel()
	c := attachTestClient(t, b.clients)

	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello"}})
	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello", "again"}})

	got := receivedKinds(c)
	if len(got) != 1 || got[0] != "chat" {
		t.Errorf("Bad deliveries for changed snapshot; got %v, want [chat]", got)
	}
}

func TestBridgeTracksKindsIndependently(t *testing.T) {
	b := newBridge(nil, "event-1")
	defer b.cancel()
	c := attachTestClient(t, b.clients)

	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello"}})
	b.broadcast(Update{Kind: "questions", EventID: "event-1", Payload: []string{"why?"}})
	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"hello", "again"}})

	got := receivedKinds(c)
	if len(got) != 1 || got[0] != "chat" {
		t.Errorf("Bad deliveries across kinds; got %v, want [chat]", got)
	}
}

func TestBridgeDropsSlowClient(t *testing.T) {
	b := newBridge(nil, "event-1")
	defer b.cancel()
	c := &Client{send: make(chan []byte)}
	b.clients[c] = true

	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"one"}})
	b.broadcast(Update{Kind: "chat", EventID: "event-1", Payload: []string{"one", "two"}})

	if _, ok := b.clients[c]; ok {
		t.Errorf("Slow client still registered after undeliverable broadcast")
	}
	if _, open := <-c.send; open {
		t.Errorf("Slow client's send channel left open")
	}
}

func TestStreamBridgeSkipsOpeningSnapshot(t *testing.T) {
	b := newStreamBridge("conversation conv-1")
	defer b.cancel()
	c := attachTestClient(t, b.clients)

	b.broadcast(Update{Kind: "messages", Payload: []string{"hi"}})

	got := receivedKinds(c)
	if len(got) != 0 {
		t.Errorf("Bad deliveries for opening snapshot; got %v, want none", got)
	}
}

func TestStreamBridgeDeliversChangedSnapshot(t *testing.T) {
	b := newStreamBridge("conversation conv-1")
	defer b.cancel()
	c := attachTestClient(t, b.clients)

	b.broadcast(Update{Kind: "messages", Payload: []string{"hi"}})
	b.broadcast(Update{Kind: "messages", Payload: []string{"hi"}})
	b.broadcast(Update{Kind: "messages", Payload: []string{"hi", "there"}})

	got := receivedKinds(c)
	if len(got) != 1 || got[0] != "messages" {
		t.Errorf("Bad deliveries; got %v, want [messages]", got)
	}
}
