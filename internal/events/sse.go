// internal/events/sse.go
//
// Server-sent events fan-out, grouped by game session.
// The engine's word-found listener publishes here; every open
// /game/{id}/events stream of that session receives the event.
//
// Slow clients are skipped rather than blocking the publisher.

package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	channelBuffer = 16
	heartbeat     = 30 * time.Second
)

// Event is one message on a session stream.
type Event struct {
	Type       string `json:"type"` // word_found | puzzle_complete | puzzle_changed | state
	SessionID  string `json:"gameId"`
	Word       string `json:"word,omitempty"`
	IsLastWord bool   `json:"isLastWord,omitempty"`
	Puzzle     int    `json:"puzzle"`
	Found      int    `json:"found"`
	Total      int    `json:"total"`
}

// Client is a single SSE connection.
type Client struct {
	ch        chan string
	sessionID string
}

// C exposes the client's message channel.
func (c *Client) C() <-chan string { return c.ch }

// Broadcaster manages SSE clients grouped by session.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*Client]struct{})}
}

// Register adds a client for a session and returns it.
func (b *Broadcaster) Register(sessionID string) *Client {
	c := &Client{ch: make(chan string, channelBuffer), sessionID: sessionID}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a client and closes its channel. Safe to call twice.
func (b *Broadcaster) Unregister(c *Client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Publish encodes ev and sends it to every client of ev.SessionID.
func (b *Broadcaster) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("encode event")
		return
	}
	b.Broadcast(ev.SessionID, string(data))
}

// Broadcast sends raw data to all clients of a session.
func (b *Broadcaster) Broadcast(sessionID, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.clients {
		if c.sessionID != sessionID {
			continue
		}
		select {
		case c.ch <- data:
		default:
			log.Debug().Str("gameId", sessionID).Msg("sse client full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients for a session.
func (b *Broadcaster) ClientCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for c := range b.clients {
		if c.sessionID == sessionID {
			n++
		}
	}
	return n
}

// Serve streams a session's events until the request context ends.
// initial, when non-nil, is sent first.
func (b *Broadcaster) Serve(w http.ResponseWriter, r *http.Request, sessionID string, initial *Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming_unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	c := b.Register(sessionID)
	defer b.Unregister(c)

	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
