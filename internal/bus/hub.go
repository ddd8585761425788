package bus

import (
	"log/slog"
	"sync"
)

// Hub fans dialog messages out to any number of subscribers.
//
// Each subscriber owns a buffered channel. Publish never blocks: a message
// that does not fit into a subscriber's buffer is dropped for that subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan DialogMessage
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan DialogMessage)}
}

// Subscribe registers a new subscriber with the given buffer size. The
// returned cancel function unsubscribes and closes the channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(bufSize int) (<-chan DialogMessage, func()) {
	ch := make(chan DialogMessage, bufSize)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Notify implements Notifier.
func (h *Hub) Notify(msg DialogMessage) { h.Publish(msg) }

// Publish delivers msg to every current subscriber.
func (h *Hub) Publish(msg DialogMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			slog.Warn("Subscriber buffer full, dropping message", "subscriber", id, "message", msg.ContentPreview())
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
