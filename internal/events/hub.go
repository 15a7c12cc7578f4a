// Package events carries watchdog lifecycle notifications from the
// supervision loop to in-process consumers such as the history recorder.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

const (
	TypeRunLaunched = "supervisor.launched"
	TypeRunExited   = "supervisor.exited"
)

const (
	defaultBacklog    = 64
	subscriberBacklog = 128
)

// Event is one published notification. Data is the JSON form of the
// published value.
type Event struct {
	Seq  int64           `json:"seq"`
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Hub fans events out to subscribers and keeps the most recent ones for
// Recent. Publish never blocks: a subscriber whose buffer is full misses
// the event.
type Hub struct {
	seq atomic.Int64

	mu      sync.Mutex
	backlog []Event
	limit   int
	subs    map[int]chan Event
	nextSub int
}

// NewHub creates a hub that retains up to backlog events.
func NewHub(backlog int) *Hub {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	return &Hub{
		limit: backlog,
		subs:  make(map[int]chan Event),
	}
}

// Publish encodes data and delivers it to every subscriber.
func (h *Hub) Publish(eventType string, data any) {
	payload := json.RawMessage(`{}`)
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = b
		}
	}
	ev := Event{
		Seq:  h.seq.Add(1),
		Type: eventType,
		At:   time.Now().UTC(),
		Data: payload,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.backlog = append(h.backlog, ev)
	if over := len(h.backlog) - h.limit; over > 0 {
		h.backlog = append(h.backlog[:0:0], h.backlog[over:]...)
	}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of future events and a cancel func. Cancel
// closes the channel; events already buffered can still be drained.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	ch := make(chan Event, subscriberBacklog)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Recent returns retained events with Seq > after, oldest first.
func (h *Hub) Recent(after int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, 0, len(h.backlog))
	for _, ev := range h.backlog {
		if ev.Seq > after {
			out = append(out, ev)
		}
	}
	return out
}
