package events

import (
	"sync"
	"sync/atomic"
)

// Handler is a callback for event subscriptions.
type Handler func(Event)

// UnsubscribeFunc is returned from Subscribe and removes the subscription.
type UnsubscribeFunc func()

type handlerEntry struct {
	id      uint64
	handler Handler
}

// Bus is a pub/sub system for session events. Handlers run synchronously in
// Publish order, matching the single-owner, run-to-completion model the
// session core assumes.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]handlerEntry
	nextID      atomic.Uint64

	historyMu   sync.RWMutex
	history     []Event
	historySize int
}

// DefaultHistorySize is the bus history capacity used when callers have no
// particular retention requirement.
const DefaultHistorySize = 100

// NewBus creates a bus retaining up to historySize recent events.
func NewBus(historySize int) *Bus {
	if historySize < 1 {
		historySize = DefaultHistorySize
	}
	return &Bus{
		subscribers: make(map[string][]handlerEntry),
		historySize: historySize,
	}
}

// Subscribe registers a handler for one event kind. Use "*" for all kinds.
func (b *Bus) Subscribe(kind string, handler Handler) UnsubscribeFunc {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID.Add(1)
	b.subscribers[kind] = append(b.subscribers[kind], handlerEntry{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		handlers := b.subscribers[kind]
		for i, h := range handlers {
			if h.id == id {
				b.subscribers[kind] = append(handlers[:i], handlers[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(handler Handler) UnsubscribeFunc {
	return b.Subscribe("*", handler)
}

// Publish delivers an event to matching subscribers and records it in
// history. Handlers run on the caller's goroutine.
func (b *Bus) Publish(event Event) {
	b.historyMu.Lock()
	b.history = append(b.history, event)
	if len(b.history) > b.historySize {
		b.history = b.history[len(b.history)-b.historySize:]
	}
	b.historyMu.Unlock()

	b.mu.RLock()
	kind := event.EventKind()
	entries := make([]handlerEntry, 0, len(b.subscribers[kind])+len(b.subscribers["*"]))
	entries = append(entries, b.subscribers[kind]...)
	entries = append(entries, b.subscribers["*"]...)
	b.mu.RUnlock()

	for _, entry := range entries {
		entry.handler(event)
	}
}

// History returns up to limit recent events, newest first.
func (b *Bus) History(limit int) []Event {
	b.historyMu.RLock()
	defer b.historyMu.RUnlock()

	if limit <= 0 || limit > len(b.history) {
		limit = len(b.history)
	}
	out := make([]Event, 0, limit)
	for i := len(b.history) - 1; i >= len(b.history)-limit; i-- {
		out = append(out, b.history[i])
	}
	return out
}

// SubscriberCount returns the number of subscribers for a kind.
func (b *Bus) SubscriberCount(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[kind])
}
