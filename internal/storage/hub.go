package storage

import "sync"

// Event is the storage change notification delivered across tabs. It
// mirrors the browser storage event shape: the changed key plus the raw
// old and new values.
type Event struct {
	Key      string
	OldValue string
	NewValue string
}

// Handler receives storage events from other tabs.
type Handler func(Event)

// Hub fans out storage events between attached tabs.
//
// Each attached handler represents one tab. Publishing through the emit
// function returned by Attach delivers the event to every OTHER handler,
// never back to the publisher - the same asymmetry the browser storage
// event has. Handlers run synchronously on the publisher's goroutine.
//
// Thread-safety: Attach, detach, and emit are safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]Handler)}
}

// Attach registers a tab's handler. The returned emit function publishes
// an event to all other tabs; the returned detach function removes the
// handler.
func (h *Hub) Attach(handler Handler) (emit func(Event), detach func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = handler
	h.mu.Unlock()

	emit = func(ev Event) {
		h.mu.RLock()
		handlers := make([]Handler, 0, len(h.subs))
		for sid, fn := range h.subs {
			if sid == id {
				continue
			}
			handlers = append(handlers, fn)
		}
		h.mu.RUnlock()

		for _, fn := range handlers {
			fn(ev)
		}
	}

	detach = func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}

	return emit, detach
}
