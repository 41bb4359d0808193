package wshub

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"konvele/dblayer"

	"github.com/golang/glog"
)

// ServeConversation streams a conversation's message list to the peer.  The
// caller must have verified the user is a participant.  It blocks for the
// connection's lifetime.
func (h *Hub) ServeConversation(w http.ResponseWriter, r *http.Request, conversationID string) error {
	key := "conversation:" + conversationID
	return h.serveStream(w, r, key, "conversation "+conversationID, func(b *streamBridge) {
		pumpStream(b, h.db.WatchConversationMessages(b.ctx, conversationID), "messages")
	})
}

// ServeInbox streams a user's conversation list to the peer.  It blocks for
// the connection's lifetime.
func (h *Hub) ServeInbox(w http.ResponseWriter, r *http.Request, userID string) error {
	key := "inbox:" + userID
	return h.serveStream(w, r, key, "inbox "+userID, func(b *streamBridge) {
		pumpStream(b, h.db.WatchConversations(b.ctx, userID), "conversations")
	})
}

func (h *Hub) serveStream(w http.ResponseWriter, r *http.Request, key, label string, run func(b *streamBridge)) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		scope: label,
		conn:  conn,
		send:  make(chan []byte, 16),
	}
	c.leave = func() { h.leaveStream(key, c) }
	h.joinStream(key, label, c, run)

	go c.writePump()
	c.readPump()
	return nil
}

// joinStream attaches a client to the named stream's bridge, creating the
// bridge (and its subscription) if this is the stream's first client.
func (h *Hub) joinStream(key, label string, c *Client, run func(b *streamBridge)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.streams[key]
	if !ok || b.isStopped() {
		b = newStreamBridge(label)
		h.streams[key] = b
		go run(b)
	}

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()
}

func (h *Hub) leaveStream(key string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.streams[key]
	if !ok {
		return
	}
	if b.unregisterAndReport(c) {
		delete(h.streams, key)
	}
}

// streamBridge is the single-subscription cousin of bridge, used for the
// messaging sockets.
type streamBridge struct {
	label string

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	clients map[*Client]bool
	last    []byte
	seen    bool
	stopped bool
}

func newStreamBridge(label string) *streamBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &streamBridge{
		label:   label,
		ctx:     ctx,
		cancel:  cancel,
		clients: map[*Client]bool{},
	}
}

func (b *streamBridge) isStopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}

func (b *streamBridge) unregisterAndReport(c *Client) bool {
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
// rendered.  The subscription's opening snapshot and any redelivered
// unchanged snapshot are dropped, for the same reason bridge.broadcast
// drops them.
func (b *streamBridge) broadcast(update Update) {
	payload, err := json.Marshal(update)
	if err != nil {
		glog.Errorf("Error while marshaling update for %s: %v", b.label, err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	last, seen := b.last, b.seen
	b.last, b.seen = payload, true
	if !seen || bytes.Equal(last, payload) {
		return
	}

	for c := range b.clients {
		select {
		case c.send <- payload:
		default:
			// Client can't keep up; drop it.
			glog.Warningf("Dropping slow client for %s", b.label)
			delete(b.clients, c)
			close(c.send)
		}
	}
}

func pumpStream[T any](b *streamBridge, sub *dblayer.Subscription[T], kind string) {
	defer func() {
		b.mu.Lock()
		b.stopped = true
		b.mu.Unlock()

		b.cancel()
		sub.Stop()
	}()

	for {
		select {
		case <-b.ctx.Done():
			return

		case view, ok := <-sub.Updates:
			if !ok {
				if sub.Err != nil {
					glog.Errorf("Live %s subscription for %s died: %v", kind, b.label, sub.Err)
				}
				return
			}
			b.broadcast(Update{Kind: kind, Payload: view})
		}
	}
}
