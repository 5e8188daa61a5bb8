// Package progress broadcasts research run progress to any number of
// listeners, typically websocket sessions.
package progress

import (
	"sync"
	"time"
)

// Event is a single progress update for a run.
type Event struct {
	RunID string         `json:"run_id"`
	Step  string         `json:"step"`
	Pct   int            `json:"pct"`
	Extra map[string]any `json:"extra,omitempty"`
	At    time.Time      `json:"at"`
}

const subscriberBuffer = 16

// Hub fans progress events out to per-run subscribers. Publishing never
// blocks: a subscriber that cannot keep up has events dropped rather than
// stalling the pipeline.
type Hub struct {
	mu   sync.Mutex
	runs map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{runs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for the given run. The returned cancel
// function removes the subscription and closes the channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(runID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.runs[runID]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.runs[runID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.runs[runID]
		if !ok {
			return
		}
		if _, live := subs[ch]; !live {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.runs, runID)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its run. Events for runs
// with no subscribers are discarded.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.runs[ev.RunID] {
		select {
		case ch <- ev:
		default:
			// slow subscriber, drop
		}
	}
}

// CloseRun closes every subscriber channel for the run and forgets it.
// Called when a run reaches a terminal state.
func (h *Hub) CloseRun(runID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.runs[runID] {
		close(ch)
	}
	delete(h.runs, runID)
}
