package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
)

// EventType names a change on the thought wall.
type EventType string

const (
	EventCreated EventType = "thought.created"
	EventLiked   EventType = "thought.liked"
	EventUpdated EventType = "thought.updated"
	EventDeleted EventType = "thought.deleted"
)

// Event is pushed to every live subscriber.
type Event struct {
	Type    EventType       `json:"type"`
	Thought thought.Thought `json:"thought"`
	At      int64           `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, t thought.Thought) Event {
	return Event{Type: typ, Thought: t, At: time.Now().UnixMilli()}
}

// Hub fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	buffer      int
	closed      bool
	logger      *zap.Logger
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[string]chan Event),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a new listener. The returned cancel func must be
// called once the listener goes away; the channel is closed by then.
func (h *Hub) Subscribe() (string, <-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { h.remove(id) })
	}
	return id, ch, cancel
}

// Publish delivers ev to every subscriber with room in its buffer.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.logger.Debug("feed subscriber too slow, dropping event",
				zap.String("subscriber", id),
				zap.String("event", string(ev.Type)),
			)
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
}
