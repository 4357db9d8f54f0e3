package realtime

import (
	"sync"
)

// Subscriber receives event payloads for one principal.
// The network connection itself is managed by the ws handler.
type Subscriber interface {
	Send(message []byte) bool
	Close()
}

// Hub fans transaction events out to the owning user's active subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[Subscriber]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			subscribers: make(map[string]map[Subscriber]struct{}),
		}
	})
	return hubInstance
}

// Subscribe registers a subscriber for a user's events.
func (h *Hub) Subscribe(userID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[userID]; !ok {
		h.subscribers[userID] = make(map[Subscriber]struct{})
	}
	h.subscribers[userID][sub] = struct{}{}
}

// Unsubscribe removes a subscriber; the user's bucket is dropped once empty.
func (h *Hub) Unsubscribe(userID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, userID)
		}
	}
}

// Publish sends a message to every subscriber of a user. Failed sends are
// left for the owning handler to clean up on its read loop.
func (h *Hub) Publish(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[userID] {
		_ = sub.Send(message)
	}
}

// SubscriberCount reports how many connections a user currently has.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
