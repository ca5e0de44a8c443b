package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// DefaultUpcomingDays is the window used when no day count is requested.
const DefaultUpcomingDays = 7

// MaxUpcomingDays caps the upcoming window.
const MaxUpcomingDays = 365

// ReminderInput carries the fields of a new reminder.
type ReminderInput struct {
	Title         string
	Description   string
	ReminderType  string
	TriggerDate   *time.Time
	RepeatPattern string
	MemoryID      *uuid.UUID
}

// ReminderService provides reminder-related operations. Returned reminders
// carry is_overdue evaluated against the service clock.
type ReminderService interface {
	List(
		ctx context.Context,
		userID uuid.UUID,
		filter store.ReminderFilter,
		page domain.PageRequest,
	) (*domain.Page[*domain.Reminder], error)

	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error)

	// Create stores a reminder. A linked memory must belong to the caller.
	Create(ctx context.Context, userID uuid.UUID, input ReminderInput) (*domain.Reminder, error)

	Update(ctx context.Context, userID, id uuid.UUID, patch domain.ReminderPatch) (*domain.Reminder, error)

	Delete(ctx context.Context, userID, id uuid.UUID) error

	Complete(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error)

	Uncomplete(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error)

	// Upcoming returns incomplete reminders due within the next days days.
	// Values below 1 use DefaultUpcomingDays and values above
	// MaxUpcomingDays are capped.
	Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*domain.Reminder, error)

	// Overdue returns incomplete reminders whose trigger date has passed.
	Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.Reminder, error)
}

type reminderServiceImpl struct {
	tx        store.Transactor
	memories  store.MemoryStore
	reminders store.ReminderStore
	emitter   events.EventEmitter
	now       func() time.Time
	logger    *slog.Logger
}

var _ ReminderService = (*reminderServiceImpl)(nil)

// NewReminderService creates a ReminderService.
// It returns an error if any of the required dependencies are nil.
func NewReminderService(
	tx store.Transactor,
	memories store.MemoryStore,
	reminders store.ReminderStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (ReminderService, error) {
	if tx == nil || memories == nil || reminders == nil {
		return nil, &ServiceError{
			Service:   "reminder",
			Operation: "create_service",
			Message:   "transactor, memory store and reminder store are required",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := buildOptions(opts)
	return &reminderServiceImpl{
		tx:        tx,
		memories:  memories,
		reminders: reminders,
		emitter:   emitter,
		now:       o.now,
		logger:    logger.With(slog.String("component", "reminder_service")),
	}, nil
}

func (s *reminderServiceImpl) annotate(reminders []*domain.Reminder) []*domain.Reminder {
	now := s.now()
	for _, r := range reminders {
		r.MarkOverdue(now)
	}
	return reminders
}

// List implements ReminderService.
func (s *reminderServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ReminderFilter,
	page domain.PageRequest,
) (*domain.Page[*domain.Reminder], error) {
	filter.Now = s.now().UTC()

	items, total, err := s.reminders.List(ctx, userID, filter, page)
	if err != nil {
		return nil, NewServiceError("reminder", "list", "failed to list reminders", err)
	}
	return domain.NewPage(s.annotate(items), page, total), nil
}

// Get implements ReminderService.
func (s *reminderServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("reminder", "get", "failed to load reminder", err)
	}
	return reminder.MarkOverdue(s.now()), nil
}

// checkMemoryOwnership loads memoryID through memories, which must already
// be bound to the surrounding transaction.
func checkMemoryOwnership(
	ctx context.Context,
	memories store.MemoryStore,
	userID uuid.UUID,
	memoryID uuid.UUID,
) error {
	if _, err := memories.GetByID(ctx, userID, memoryID); err != nil {
		if isNotFound(err) {
			return ErrAssociatedMemoryNotFound
		}
		return err
	}
	return nil
}

// Create implements ReminderService.
func (s *reminderServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
	input ReminderInput,
) (*domain.Reminder, error) {
	now := s.now()

	reminder, err := domain.NewReminder(userID, input.Title, input.Description, input.ReminderType,
		input.TriggerDate, input.RepeatPattern, input.MemoryID, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if reminder.MemoryID != nil {
			if err := checkMemoryOwnership(ctx, s.memories.WithTx(tx), userID, *reminder.MemoryID); err != nil {
				return err
			}
		}
		return s.reminders.WithTx(tx).Create(ctx, reminder)
	})
	if err != nil {
		return nil, NewServiceError("reminder", "create", "failed to create reminder", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("reminder created",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("user_id", userID.String()))
	return reminder.MarkOverdue(now), nil
}

// Update implements ReminderService.
func (s *reminderServiceImpl) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	patch domain.ReminderPatch,
) (*domain.Reminder, error) {
	now := s.now()

	var updated *domain.Reminder
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		reminders := s.reminders.WithTx(tx)

		reminder, err := reminders.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if patch.MemoryID != nil && !patch.ClearMemoryID {
			if err := checkMemoryOwnership(ctx, s.memories.WithTx(tx), userID, *patch.MemoryID); err != nil {
				return err
			}
		}
		if err := patch.Apply(reminder, now); err != nil {
			return err
		}
		if err := reminders.Update(ctx, reminder); err != nil {
			return err
		}
		updated = reminder
		return nil
	})
	if err != nil {
		return nil, NewServiceError("reminder", "update", "failed to update reminder", err)
	}
	return updated.MarkOverdue(now), nil
}

// Delete implements ReminderService.
func (s *reminderServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.reminders.Delete(ctx, userID, id); err != nil {
		return NewServiceError("reminder", "delete", "failed to delete reminder", err)
	}
	return nil
}

// setCompletion loads, mutates and stores a reminder's completion state.
func (s *reminderServiceImpl) setCompletion(
	ctx context.Context,
	userID, id uuid.UUID,
	completed bool,
) (*domain.Reminder, error) {
	operation := "uncomplete"
	if completed {
		operation = "complete"
	}
	now := s.now()

	reminder, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("reminder", operation, "failed to load reminder", err)
	}

	if completed {
		reminder.Complete(now)
	} else {
		reminder.Uncomplete(now)
	}
	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, NewServiceError("reminder", operation, "failed to update reminder", err)
	}
	return reminder.MarkOverdue(now), nil
}

// Complete implements ReminderService.
func (s *reminderServiceImpl) Complete(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.setCompletion(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.emitter, s.logger, events.TypeReminderCompleted, userID,
		events.ReminderPayload{ReminderID: id}, *reminder.CompletedAt)
	return reminder, nil
}

// Uncomplete implements ReminderService.
func (s *reminderServiceImpl) Uncomplete(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error) {
	return s.setCompletion(ctx, userID, id, false)
}

// Upcoming implements ReminderService.
func (s *reminderServiceImpl) Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*domain.Reminder, error) {
	if days < 1 {
		days = DefaultUpcomingDays
	}
	days = min(days, MaxUpcomingDays)
	now := s.now().UTC()

	reminders, err := s.reminders.Between(ctx, userID, now, now.AddDate(0, 0, days), 0)
	if err != nil {
		return nil, NewServiceError("reminder", "upcoming", "failed to list upcoming reminders", err)
	}
	return s.annotate(reminders), nil
}

// Overdue implements ReminderService.
func (s *reminderServiceImpl) Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.Reminder, error) {
	reminders, err := s.reminders.Overdue(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, NewServiceError("reminder", "overdue", "failed to list overdue reminders", err)
	}
	return s.annotate(reminders), nil
}
