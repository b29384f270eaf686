package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/catalog/pkg/event"
)

func TestFireReachesNamedAndCatchAllListeners(t *testing.T) {
	bus := event.NewBus()

	var got []string
	bus.Listen(event.ProductCreated, func(e event.Event) { got = append(got, "named:"+e.Name) })
	bus.Listen(event.ProductDeleted, func(e event.Event) { got = append(got, "other") })
	bus.ListenAll(func(e event.Event) { got = append(got, "all:"+e.Name) })

	bus.Fire(event.Event{Name: event.ProductCreated, Payload: "LAMP-1"})

	assert.Equal(t, []string{"named:product.created", "all:product.created"}, got)
}

func TestFireStampsTime(t *testing.T) {
	bus := event.NewBus()
	var at time.Time
	bus.ListenAll(func(e event.Event) { at = e.OccurredAt })

	bus.Fire(event.Event{Name: event.ProductUpdated})
	assert.False(t, at.IsZero())
}

func TestFireAsync(t *testing.T) {
	bus := event.NewBus()
	var wg sync.WaitGroup
	wg.Add(2)
	bus.Listen(event.ProductUpdated, func(event.Event) { wg.Done() })
	bus.ListenAll(func(event.Event) { wg.Done() })

	bus.FireAsync(event.Event{Name: event.ProductUpdated})
	wg.Wait()
}

func TestNilBusAndFlush(t *testing.T) {
	var nilBus *event.Bus
	assert.NotPanics(t, func() { nilBus.Fire(event.Event{Name: "x"}) })

	bus := event.NewBus()
	called := false
	bus.ListenAll(func(event.Event) { called = true })
	bus.Flush()
	bus.Fire(event.Event{Name: "x"})
	assert.False(t, called)
}
