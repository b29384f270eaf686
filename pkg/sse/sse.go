// Package sse streams published events to HTTP clients as Server-Sent
// Events.
//
//	broker := sse.NewBroker()
//	bus.ListenAll(func(e event.Event) { broker.Publish(e.Name, e) })
//	router.Get("/events/stream", "events.stream", broker.ServeHTTP)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/catalog/pkg/logger"
)

// HeartbeatInterval is how often an idle stream gets a keepalive comment.
var HeartbeatInterval = 25 * time.Second

const subscriberBuffer = 16

type message struct {
	event string
	data  []byte
}

// Broker fans published events out to every connected stream. A subscriber
// whose buffer is full misses the event rather than blocking Publish.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan message]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan message]struct{})}
}

// Publish JSON-encodes data and queues it for every subscriber.
func (b *Broker) Publish(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Warn("sse: marshal event", "event", event, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- message{event: event, data: payload}:
		default:
		}
	}
}

// Subscribers reports the number of connected streams.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) subscribe() chan message {
	ch := make(chan message, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan message) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// ServeHTTP holds the connection open and writes events until the client
// goes away.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's WriteTimeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logger.WithCtx(r.Context()).Warn("sse: streaming not supported", "error", err)
		return
	}

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
			_ = rc.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			_ = rc.Flush()
		}
	}
}
