package events

import (
	"context"
	"log"
	"sync"
)

// A Handler receives every event on the bus. A non-nil error is logged
// and delivery continues with the next handler.
type Handler func(Event) error

// Bus is the single-threaded dispatcher. Publish from any goroutine;
// one Run goroutine delivers sequentially to every handler in
// registration order, awaiting each return before the next event.
type Bus struct {
	ch chan Event

	mu       sync.Mutex
	handlers []Handler
}

// NewBus returns a bus ready for Register and Run. The buffer absorbs
// bursts from transports while a handler is mid-delivery.
func NewBus() *Bus {
	return &Bus{ch: make(chan Event, 128)}
}

// Register adds a handler. Handlers registered after Run has started
// still receive subsequent events.
func (b *Bus) Register(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish queues an event for delivery.
func (b *Bus) Publish(ev Event) {
	b.ch <- ev
}

// Run delivers events until ctx ends.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.ch:
			b.mu.Lock()
			handlers := b.handlers
			b.mu.Unlock()
			for _, h := range handlers {
				if err := h(ev); err != nil {
					log.Printf("[events] %T: %v", ev, err)
				}
			}
		}
	}
}
