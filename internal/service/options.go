package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/logger"
)

// Option configures a service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// publish emits an event after a successful mutation. Failures are logged
// and never reach the caller.
func publish(
	ctx context.Context,
	emitter events.EventEmitter,
	fallback *slog.Logger,
	eventType string,
	userID uuid.UUID,
	payload any,
	at time.Time,
) {
	if emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, fallback)

	event, err := events.NewDomainEvent(eventType, userID, payload, at)
	if err != nil {
		log.Error("failed to build event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
