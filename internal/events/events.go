package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the services.
const (
	TypeMemoryCreated       = "memory.created"
	TypeMemoryDeleted       = "memory.deleted"
	TypeReminderCompleted   = "reminder.completed"
	TypeSubscriptionChanged = "subscription.changed"
)

// DomainEvent records something that happened to a user's data.
type DomainEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// UserID is the owner of the affected resource
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is the timestamp when the change happened
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *DomainEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewDomainEvent creates an event of the given type for userID.
func NewDomainEvent(eventType string, userID uuid.UUID, payload any, occurredAt time.Time) (*DomainEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &DomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Payload:    payloadBytes,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// MemoryPayload is carried by memory.created and memory.deleted.
type MemoryPayload struct {
	MemoryID   uuid.UUID `json:"memory_id"`
	MemoryType string    `json:"memory_type,omitempty"`
}

// ReminderPayload is carried by reminder.completed.
type ReminderPayload struct {
	ReminderID uuid.UUID `json:"reminder_id"`
}

// SubscriptionPayload is carried by subscription.changed.
type SubscriptionPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *DomainEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *DomainEvent) error
}
