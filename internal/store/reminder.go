package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// ReminderFilter narrows a reminder listing. Now anchors the overdue status.
type ReminderFilter struct {
	ReminderType *domain.ReminderType
	Status       domain.ReminderStatus
	Now          time.Time
}

// ReminderStore defines the interface for reminder persistence. Lookups are
// scoped by owner like MemoryStore.
type ReminderStore interface {
	Create(ctx context.Context, reminder *domain.Reminder) error

	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error)

	// List orders completed listings by completed_at descending and every
	// other listing by trigger_date ascending with undated reminders last.
	List(
		ctx context.Context,
		userID uuid.UUID,
		filter ReminderFilter,
		page domain.PageRequest,
	) ([]*domain.Reminder, int, error)

	// Between returns incomplete reminders with from <= trigger_date <= to,
	// ascending. A limit of zero means no limit.
	Between(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]*domain.Reminder, error)

	// Overdue returns incomplete reminders with trigger_date < now, ascending.
	Overdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Reminder, error)

	CountOverdue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	Update(ctx context.Context, reminder *domain.Reminder) error

	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a ReminderStore bound to tx.
	WithTx(tx *sql.Tx) ReminderStore
}
