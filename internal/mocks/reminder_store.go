package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// MockReminderStore is an in-memory store.ReminderStore.
type MockReminderStore struct {
	CreateFn func(ctx context.Context, reminder *domain.Reminder) error
	UpdateFn func(ctx context.Context, reminder *domain.Reminder) error
	DeleteFn func(ctx context.Context, userID, id uuid.UUID) error

	mu        sync.Mutex
	reminders map[uuid.UUID]*domain.Reminder
}

var _ store.ReminderStore = (*MockReminderStore)(nil)

// NewMockReminderStore creates a store seeded with reminders.
func NewMockReminderStore(reminders ...*domain.Reminder) *MockReminderStore {
	m := &MockReminderStore{reminders: make(map[uuid.UUID]*domain.Reminder)}
	for _, reminder := range reminders {
		c := *reminder
		m.reminders[reminder.ID] = &c
	}
	return m
}

// Create implements store.ReminderStore.
func (m *MockReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, reminder)
	}
	if err := reminder.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reminders[reminder.ID]; ok {
		return store.ErrDuplicate
	}
	c := *reminder
	m.reminders[reminder.ID] = &c
	return nil
}

// GetByID implements store.ReminderStore.
func (m *MockReminderStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reminder, ok := m.reminders[id]
	if !ok || reminder.UserID != userID {
		return nil, store.ErrReminderNotFound
	}
	c := *reminder
	return &c, nil
}

func (m *MockReminderStore) owned(userID uuid.UUID, keep func(*domain.Reminder) bool) []*domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domain.Reminder
	for _, reminder := range m.reminders {
		if reminder.UserID == userID && keep(reminder) {
			c := *reminder
			result = append(result, &c)
		}
	}
	return result
}

// byTriggerAscending orders by trigger date with undated reminders last,
// then newest first.
func byTriggerAscending(reminders []*domain.Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i], reminders[j]
		switch {
		case a.TriggerDate == nil && b.TriggerDate != nil:
			return false
		case a.TriggerDate != nil && b.TriggerDate == nil:
			return true
		case a.TriggerDate != nil && !a.TriggerDate.Equal(*b.TriggerDate):
			return a.TriggerDate.Before(*b.TriggerDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func byCompletedDescending(reminders []*domain.Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i], reminders[j]
		if a.CompletedAt != nil && b.CompletedAt != nil && !a.CompletedAt.Equal(*b.CompletedAt) {
			return a.CompletedAt.After(*b.CompletedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// List implements store.ReminderStore.
func (m *MockReminderStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ReminderFilter,
	page domain.PageRequest,
) ([]*domain.Reminder, int, error) {
	all := m.owned(userID, func(r *domain.Reminder) bool {
		if filter.ReminderType != nil && r.ReminderType != *filter.ReminderType {
			return false
		}
		switch filter.Status {
		case domain.ReminderStatusCompleted:
			return r.IsCompleted
		case domain.ReminderStatusPending:
			return !r.IsCompleted
		case domain.ReminderStatusOverdue:
			return r.IsOverdue(filter.Now)
		}
		return true
	})

	if filter.Status == domain.ReminderStatusCompleted {
		byCompletedDescending(all)
	} else {
		byTriggerAscending(all)
	}
	return pageOf(all, page), len(all), nil
}

// Between implements store.ReminderStore.
func (m *MockReminderStore) Between(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*domain.Reminder, error) {
	all := m.owned(userID, func(r *domain.Reminder) bool {
		return !r.IsCompleted && r.TriggerDate != nil &&
			!r.TriggerDate.Before(from) && !r.TriggerDate.After(to)
	})
	byTriggerAscending(all)
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	if all == nil {
		all = []*domain.Reminder{}
	}
	return all, nil
}

// Overdue implements store.ReminderStore.
func (m *MockReminderStore) Overdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Reminder, error) {
	all := m.owned(userID, func(r *domain.Reminder) bool { return r.IsOverdue(now) })
	byTriggerAscending(all)
	if all == nil {
		all = []*domain.Reminder{}
	}
	return all, nil
}

// CountOverdue implements store.ReminderStore.
func (m *MockReminderStore) CountOverdue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	return len(m.owned(userID, func(r *domain.Reminder) bool { return r.IsOverdue(now) })), nil
}

// CountByUser implements store.ReminderStore.
func (m *MockReminderStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(m.owned(userID, func(*domain.Reminder) bool { return true })), nil
}

// Update implements store.ReminderStore.
func (m *MockReminderStore) Update(ctx context.Context, reminder *domain.Reminder) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, reminder)
	}
	if err := reminder.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.reminders[reminder.ID]
	if !ok || existing.UserID != reminder.UserID {
		return store.ErrReminderNotFound
	}
	c := *reminder
	m.reminders[reminder.ID] = &c
	return nil
}

// Delete implements store.ReminderStore.
func (m *MockReminderStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	reminder, ok := m.reminders[id]
	if !ok || reminder.UserID != userID {
		return store.ErrReminderNotFound
	}
	delete(m.reminders, id)
	return nil
}

// WithTx returns the same mock.
func (m *MockReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return m
}

// Stored returns the stored reminder with id, or nil.
func (m *MockReminderStore) Stored(id uuid.UUID) *domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	reminder, ok := m.reminders[id]
	if !ok {
		return nil
	}
	c := *reminder
	return &c
}
