package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const reminderColumns = `id, user_id, memory_id, title, description, reminder_type, trigger_date,
	repeat_pattern, is_completed, completed_at, created_at, updated_at`

const ascendingTrigger = `trigger_date ASC NULLS LAST, created_at DESC`

// PostgresReminderStore implements store.ReminderStore on PostgreSQL.
type PostgresReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReminderStore creates a reminder store over db.
func NewPostgresReminderStore(db store.DBTX, logger *slog.Logger) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

// Ensure PostgresReminderStore implements store.ReminderStore
var _ store.ReminderStore = (*PostgresReminderStore)(nil)

// Create implements store.ReminderStore.Create.
func (s *PostgresReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reminder.Validate(); err != nil {
		log.Warn("reminder validation failed during create",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		reminder.ID,
		reminder.UserID,
		nullUUID(reminder.MemoryID),
		reminder.Title,
		reminder.Description,
		string(reminder.ReminderType),
		reminder.TriggerDate,
		reminder.RepeatPattern,
		reminder.IsCompleted,
		reminder.CompletedAt,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("reminder references a missing user or memory",
				slog.String("reminder_id", reminder.ID.String()))
			return store.NewStoreError("reminder", "create", "referenced row does not exist", MapError(err))
		}
		log.Error("failed to create reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return store.NewStoreError("reminder", "create", "failed to insert reminder", MapError(err))
	}

	log.Debug("reminder created",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("user_id", reminder.UserID.String()))
	return nil
}

// GetByID implements store.ReminderStore.GetByID.
func (s *PostgresReminderStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1 AND user_id = $2`,
		id, userID)

	reminder, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("reminder not found", slog.String("reminder_id", id.String()))
			return nil, store.ErrReminderNotFound
		}
		log.Error("failed to load reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", id.String()))
		return nil, store.NewStoreError("reminder", "get", "failed to load reminder", MapError(err))
	}
	return reminder, nil
}

// reminderWhere builds the WHERE clause and ORDER BY for a filtered listing.
func reminderWhere(userID uuid.UUID, filter store.ReminderFilter) (string, string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}
	order := ascendingTrigger

	if filter.ReminderType != nil {
		args = append(args, string(*filter.ReminderType))
		conditions = append(conditions, fmt.Sprintf("reminder_type = $%d", len(args)))
	}

	switch filter.Status {
	case domain.ReminderStatusCompleted:
		conditions = append(conditions, "is_completed = TRUE")
		order = `completed_at DESC, created_at DESC`
	case domain.ReminderStatusPending:
		conditions = append(conditions, "is_completed = FALSE")
	case domain.ReminderStatusOverdue:
		args = append(args, filter.Now)
		conditions = append(conditions, fmt.Sprintf("is_completed = FALSE AND trigger_date < $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), order, args
}

// List implements store.ReminderStore.List.
func (s *PostgresReminderStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ReminderFilter,
	page domain.PageRequest,
) ([]*domain.Reminder, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, order, args := reminderWhere(userID, filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders WHERE `+where, args...).Scan(&total); err != nil {
		log.Error("failed to count reminders", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("reminder", "list", "failed to count reminders", MapError(err))
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM reminders WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		reminderColumns, where, order, n+1, n+2)
	args = append(args, page.Limit(), page.Offset())

	reminders, err := s.queryReminders(ctx, query, args...)
	if err != nil {
		log.Error("failed to list reminders", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("reminder", "list", "failed to list reminders", MapError(err))
	}
	return reminders, total, nil
}

// Between implements store.ReminderStore.Between.
func (s *PostgresReminderStore) Between(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE user_id = $1 AND is_completed = FALSE AND trigger_date >= $2 AND trigger_date <= $3
		ORDER BY ` + ascendingTrigger
	args := []any{userID, from, to}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	reminders, err := s.queryReminders(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("reminder", "between", "failed to list upcoming reminders", MapError(err))
	}
	return reminders, nil
}

// Overdue implements store.ReminderStore.Overdue.
func (s *PostgresReminderStore) Overdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Reminder, error) {
	reminders, err := s.queryReminders(ctx, `SELECT `+reminderColumns+` FROM reminders
		WHERE user_id = $1 AND is_completed = FALSE AND trigger_date < $2
		ORDER BY `+ascendingTrigger, userID, now)
	if err != nil {
		return nil, store.NewStoreError("reminder", "overdue", "failed to list overdue reminders", MapError(err))
	}
	return reminders, nil
}

// CountOverdue implements store.ReminderStore.CountOverdue.
func (s *PostgresReminderStore) CountOverdue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders
		WHERE user_id = $1 AND is_completed = FALSE AND trigger_date < $2`, userID, now).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("reminder", "count", "failed to count overdue reminders", MapError(err))
	}
	return count, nil
}

// CountByUser implements store.ReminderStore.CountByUser.
func (s *PostgresReminderStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("reminder", "count", "failed to count reminders", MapError(err))
	}
	return count, nil
}

// Update implements store.ReminderStore.Update.
func (s *PostgresReminderStore) Update(ctx context.Context, reminder *domain.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reminder.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET memory_id = $3, title = $4, description = $5, reminder_type = $6, trigger_date = $7,
		    repeat_pattern = $8, is_completed = $9, completed_at = $10, updated_at = $11
		WHERE id = $1 AND user_id = $2`,
		reminder.ID,
		reminder.UserID,
		nullUUID(reminder.MemoryID),
		reminder.Title,
		reminder.Description,
		string(reminder.ReminderType),
		reminder.TriggerDate,
		reminder.RepeatPattern,
		reminder.IsCompleted,
		reminder.CompletedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return store.NewStoreError("reminder", "update", "failed to update reminder", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrReminderNotFound)
}

// Delete implements store.ReminderStore.Delete.
func (s *PostgresReminderStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return store.NewStoreError("reminder", "delete", "failed to delete reminder", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrReminderNotFound)
}

// WithTx implements store.ReminderStore.WithTx.
func (s *PostgresReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &PostgresReminderStore{db: tx, logger: s.logger}
}

func (s *PostgresReminderStore) queryReminders(ctx context.Context, query string, args ...any) ([]*domain.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	reminders := make([]*domain.Reminder, 0)
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

func scanReminder(row rowScanner) (*domain.Reminder, error) {
	var reminder domain.Reminder
	var reminderType string
	var memoryID uuid.NullUUID
	var triggerDate, completedAt sql.NullTime
	var repeatPattern sql.NullString

	err := row.Scan(
		&reminder.ID,
		&reminder.UserID,
		&memoryID,
		&reminder.Title,
		&reminder.Description,
		&reminderType,
		&triggerDate,
		&repeatPattern,
		&reminder.IsCompleted,
		&completedAt,
		&reminder.CreatedAt,
		&reminder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reminder.ReminderType = domain.ReminderType(reminderType)
	if memoryID.Valid {
		id := memoryID.UUID
		reminder.MemoryID = &id
	}
	if triggerDate.Valid {
		t := triggerDate.Time.UTC()
		reminder.TriggerDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		reminder.CompletedAt = &t
	}
	if repeatPattern.Valid {
		reminder.RepeatPattern = &repeatPattern.String
	}
	return &reminder, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
