package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler reacts to one published event. Handlers must tolerate redelivery
// of logically equal events.
type Handler func(ctx context.Context, ev Event)

// Bus is a synchronous in-process dispatcher. Publish runs every handler for
// the event name in subscription order, on the caller's goroutine, so
// request handlers observe their side effects (e.g. the notification row
// exists before the booking response is written).
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates an empty dispatcher.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event name. Subscriptions happen at
// startup, before any Publish.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish dispatches the event to all subscribers. A panicking handler is
// recovered and logged; it never fails the publishing request and later
// handlers still run.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	hs := b.handlers[ev.Name]
	b.mu.RUnlock()

	for _, h := range hs {
		b.dispatch(ctx, ev, h)
	}
}

func (b *Bus) dispatch(ctx context.Context, ev Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", ev.Name),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, ev)
}
