package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher delivers import events to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a synchronous dispatcher. Handlers run on
// the publishing goroutine in subscription order.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{listeners: make(map[EventType][]EventHandler)}
}

// Publish runs every handler subscribed to the event type. Handler errors
// and panics are collected and joined; a cancelled context stops delivery
// to the handlers not yet called.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler(nil), d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := deliver(ctx, handler, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s handler panicked: %v", event.Type, r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
