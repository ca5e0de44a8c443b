package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return testNow })
}

// recordingEmitter collects emitted events and optionally fails.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.DomainEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.DomainEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]string, 0, len(e.events))
	for _, event := range e.events {
		types = append(types, event.Type)
	}
	return types
}

func newTestUser(t *testing.T, tier domain.SubscriptionType) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.NewString()[:8]+"@example.com", "Secret123", "Tester", testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "hashed:Secret123"
	user.SubscriptionType = tier
	return user
}

func newTestMemory(t *testing.T, userID uuid.UUID, title string, age time.Duration) *domain.Memory {
	t.Helper()
	memory, err := domain.NewMemory(userID, title, "content of "+title, "", nil, nil, testNow.Add(-age))
	require.NoError(t, err)
	return memory
}

func newTestReminder(t *testing.T, userID uuid.UUID, title string, trigger *time.Time) *domain.Reminder {
	t.Helper()
	reminder, err := domain.NewReminder(userID, title, "", "", trigger, "", nil, testNow.Add(-time.Hour))
	require.NoError(t, err)
	return reminder
}

func at(offset time.Duration) *time.Time {
	t := testNow.Add(offset)
	return &t
}

var errBoom = errors.New("boom")
