package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/platform/logger"
)

// ActivityLogHandler writes one structured log line per event.
type ActivityLogHandler struct {
	logger *slog.Logger
}

// NewActivityLogHandler creates an ActivityLogHandler writing to l.
func NewActivityLogHandler(l *slog.Logger) *ActivityLogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ActivityLogHandler{logger: l.With("component", "activity_log")}
}

// HandleEvent implements EventHandler.
func (h *ActivityLogHandler) HandleEvent(ctx context.Context, event *DomainEvent) error {
	log := logger.FromContextOrDefault(ctx, h.logger)
	log.Info("user activity",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("user_id", event.UserID.String()),
		slog.Time("occurred_at", event.OccurredAt),
		slog.String("payload", string(event.Payload)))
	return nil
}
