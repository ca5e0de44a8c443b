package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// subscription routes events to a handler. An empty types list matches
// every event.
type subscription struct {
	handler EventHandler
	types   []string
}

func (s subscription) matches(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// InMemoryEventEmitter dispatches domain events synchronously to the
// handlers subscribed to their type.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to every event type.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.Subscribe(handler)
}

// Subscribe routes events of the given types to handler. With no types the
// handler receives everything.
func (e *InMemoryEventEmitter) Subscribe(handler EventHandler, types ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{handler: handler, types: slices.Clone(types)})
	e.logger.Debug("event handler subscribed",
		"event_types", types,
		"subscriber_count", len(e.subs))
}

// EmitEvent delivers event to each matching handler in subscription order.
// Every handler runs even if an earlier one fails; the failures are joined
// into the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *DomainEvent) error {
	e.mu.RLock()
	subs := slices.Clone(e.subs)
	e.mu.RUnlock()

	var errs []error
	delivered := 0
	for _, sub := range subs {
		if !sub.matches(event.Type) {
			continue
		}
		delivered++
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("event handler failed",
				"error", err,
				"event_id", event.ID,
				"event_type", event.Type)
			errs = append(errs, err)
		}
	}

	e.logger.Debug("event emitted",
		"event_id", event.ID,
		"event_type", event.Type,
		"delivered", delivered)
	return errors.Join(errs...)
}
