package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// HandlerFunc is a function that handles an event.
type HandlerFunc func(ctx context.Context, event Event) error

// EventBus is a small publish-subscribe hub. The game controller is its
// only publisher; observers subscribe by event type.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]handlerEntry
	stopped  bool
	wg       sync.WaitGroup
}

type handlerEntry struct {
	name    string
	handler HandlerFunc
}

// NewEventBus creates a new EventBus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]handlerEntry),
	}
}

// Subscribe registers a handler for one event type. Handlers for the same
// type run in subscription order under EmitSync.
func (eb *EventBus) Subscribe(eventType EventType, name string, handler HandlerFunc) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handlerEntry{
		name:    name,
		handler: handler,
	})

	log.Debug().
		Str("event", string(eventType)).
		Str("handler", name).
		Msg("subscribed to event")
}

// Emit publishes an event asynchronously. Each handler runs in its own
// goroutine; use Stop to wait for them.
func (eb *EventBus) Emit(ctx context.Context, event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, h := range eb.snapshotLocked(&event) {
		eb.wg.Add(1)
		go func() {
			defer eb.wg.Done()
			if err := eb.dispatch(ctx, h, event); err != nil {
				log.Error().
					Err(err).
					Str("event", string(event.Type)).
					Str("handler", h.name).
					Msg("handler returned error")
			}
		}()
	}
}

// EmitSync publishes an event and runs every handler on the calling
// goroutine, in subscription order. Handler errors are logged and the
// first one is returned.
func (eb *EventBus) EmitSync(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := eb.snapshotLocked(&event)
	eb.mu.RUnlock()

	var firstErr error
	for _, h := range handlers {
		if err := eb.dispatch(ctx, h, event); err != nil {
			log.Error().
				Err(err).
				Str("event", string(event.Type)).
				Str("handler", h.name).
				Msg("handler returned error")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// snapshotLocked stamps the event and copies its handler list. The caller
// must hold eb.mu.
func (eb *EventBus) snapshotLocked(event *Event) []handlerEntry {
	if eb.stopped {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	handlers := eb.handlers[event.Type]
	out := make([]handlerEntry, len(handlers))
	copy(out, handlers)

	log.Trace().
		Str("event", string(event.Type)).
		Str("source", event.Source).
		Int("handlers", len(out)).
		Msg("emitting event")

	return out
}

// dispatch runs one handler, converting a panic into an error.
func (eb *EventBus) dispatch(ctx context.Context, h handlerEntry, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", h.name, r)
		}
	}()
	return h.handler(ctx, event)
}

// Stop stops accepting new events and waits for in-flight async handlers.
func (eb *EventBus) Stop() {
	eb.mu.Lock()
	eb.stopped = true
	eb.mu.Unlock()

	eb.wg.Wait()
	log.Debug().Msg("event bus stopped")
}

// HandlerCount returns the number of handlers registered for a specific event type.
func (eb *EventBus) HandlerCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}
