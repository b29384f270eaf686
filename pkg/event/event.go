// Package event provides an in-process event dispatcher.
//
//	bus := event.NewBus()
//	bus.Listen(event.ProductCreated, func(e event.Event) { ... })
//	bus.Fire(event.Event{Name: event.ProductCreated, Payload: p})
package event

import (
	"sync"
	"time"
)

// Product change events.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// Event is a named payload. OccurredAt is filled by Fire when zero.
type Event struct {
	Name       string    `json:"event"`
	Payload    any       `json:"data"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Handler receives an event.
type Handler func(e Event)

// Bus dispatches events to listeners. The zero value is not usable; use NewBus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// ListenAll registers a handler for every event.
func (b *Bus) ListenAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, 0, len(b.handlers[name])+len(b.all))
	hs = append(hs, b.handlers[name]...)
	return append(hs, b.all...)
}

// Fire dispatches e synchronously to all listeners, in registration order.
// A nil Bus drops the event.
func (b *Bus) Fire(e Event) {
	if b == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	for _, h := range b.listeners(e.Name) {
		h(e)
	}
}

// FireAsync dispatches e to every listener on its own goroutine and returns
// immediately.
func (b *Bus) FireAsync(e Event) {
	if b == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	for _, h := range b.listeners(e.Name) {
		go h(e)
	}
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
	b.all = nil
}
