// Package wshub fans live engagement views out to browser WebSocket
// clients.  One bridge exists per event with at least one connected client;
// the bridge owns the Firestore subscriptions and pushes each fresh
// materialized view to every client.  When the last client disconnects the
// bridge stops its subscriptions.  Conversation messages and per-user
// inboxes get the same treatment through single-subscription stream
// bridges.
package wshub

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"konvele/dblayer"

	"github.com/golang/glog"
)

// Update is the wire envelope pushed to clients.  Kind names the view
// ("chat", "questions", "polls", "votes", "leaderboard" on event sockets;
// "messages" or "conversations" on messaging sockets); Payload is the full
// current view for that kind.
type Update struct {
	Kind    string      `json:"kind"`
	EventID string      `json:"eventId,omitempty"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	db *dblayer.DB

	mu      sync.Mutex
	bridges map[string]*bridge
	streams map[string]*streamBridge
}

func New(db *dblayer.DB) *Hub {
	return &Hub{
		db:      db,
		bridges: map[string]*bridge{},
		streams: map[string]*streamBridge{},
	}
}

// Join attaches a client to an event's bridge, creating the bridge (and its
// subscriptions) if this is the event's first client.
func (h *Hub) Join(eventID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.bridges[eventID]
	if !ok || b.isStopped() {
		b = newBridge(h.db, eventID)
		h.bridges[eventID] = b
		go b.run()
	}

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()
}

// Leave detaches a client.  The bridge tears itself down once empty; Leave
// reaps it from the map.
func (h *Hub) Leave(eventID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.bridges[eventID]
	if !ok {
		return
	}
	if b.unregisterAndReport(c) {
		delete(h.bridges, eventID)
	}
}

type bridge struct {
	db      *dblayer.DB
	eventID string

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	clients map[*Client]bool
	last    map[string][]byte
	stopped bool
}

func newBridge(db *dblayer.DB, eventID string) *bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &bridge{
		db:      db,
		eventID: eventID,
		ctx:     ctx,
		cancel:  cancel,
		clients: map[*Client]bool{},
		last:    map[string][]byte{},
	}
}

func (b *bridge) isStopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}

// unregisterAndReport removes the client and reports whether the bridge is
// now empty and has shut down.
func (b *bridge) unregisterAndReport(c *Client) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}

	if len(b.clients) == 0 && !b.stopped {
		b.stopped = true
		b.cancel()
		return true
	}
	return false
}

// broadcast fans the view out unless it matches what clients have already
// rendered.  Each subscription opens with a snapshot of the same data the
// page was server-rendered from, and Firestore may redeliver an unchanged
// snapshot; pushing either would bounce every viewer through a pointless
// re-render, and for a lone viewer the re-render reconnects and replays the
// opening snapshots, looping forever.
func (b *bridge) broadcast(update Update) {
	payload, err := json.Marshal(update)
	if err != nil {
		glog.Errorf("Error while marshaling update for event %s: %v", b.eventID, err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	last, seen := b.last[update.Kind]
	b.last[update.Kind] = payload
	if !seen || bytes.Equal(last, payload) {
		return
	}

	for c := range b.clients {
		select {
		case c.send <- payload:
		default:
			// Client can't keep up; drop it.
			glog.Warningf("Dropping slow client for event %s", b.eventID)
			delete(b.clients, c)
			close(c.send)
		}
	}
}

func (b *bridge) run() {
	ctx := b.ctx

	chat := b.db.WatchChat(ctx, b.eventID)
	questions := b.db.WatchQuestions(ctx, b.eventID)
	polls := b.db.WatchPolls(ctx, b.eventID)
	votes := b.db.WatchEventVotes(ctx, b.eventID)
	leaderboard := b.db.WatchLeaderboard(ctx, b.eventID)
	defer func() {
		b.mu.Lock()
		b.stopped = true
		b.mu.Unlock()

		b.cancel()
		chat.Stop()
		questions.Stop()
		polls.Stop()
		votes.Stop()
		leaderboard.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case view, ok := <-chat.Updates:
			if !ok {
				b.reportSubscriptionEnd("chat", chat.Err)
				return
			}
			b.broadcast(Update{Kind: "chat", EventID: b.eventID, Payload: view})

		case view, ok := <-questions.Updates:
			if !ok {
				b.reportSubscriptionEnd("questions", questions.Err)
				return
			}
			b.broadcast(Update{Kind: "questions", EventID: b.eventID, Payload: view})

		case view, ok := <-polls.Updates:
			if !ok {
				b.reportSubscriptionEnd("polls", polls.Err)
				return
			}
			b.broadcast(Update{Kind: "polls", EventID: b.eventID, Payload: view})

		case view, ok := <-votes.Updates:
			if !ok {
				b.reportSubscriptionEnd("votes", votes.Err)
				return
			}
			b.broadcast(Update{Kind: "votes", EventID: b.eventID, Payload: view})

		case view, ok := <-leaderboard.Updates:
			if !ok {
				b.reportSubscriptionEnd("leaderboard", leaderboard.Err)
				return
			}
			b.broadcast(Update{Kind: "leaderboard", EventID: b.eventID, Payload: view})
		}
	}
}

func (b *bridge) reportSubscriptionEnd(kind string, err error) {
	if err != nil {
		glog.Errorf("Live %s subscription for event %s died: %v", kind, b.eventID, err)
	}
}
