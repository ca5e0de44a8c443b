package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReminderType classifies a reminder.
type ReminderType string

const (
	ReminderTypeSpacedRepetition ReminderType = "spaced_repetition"
	ReminderTypeDeadline         ReminderType = "deadline"
	ReminderTypeHabit            ReminderType = "habit"
	ReminderTypeContextual       ReminderType = "contextual"
)

// ReminderTypes lists every reminder type.
var ReminderTypes = []ReminderType{
	ReminderTypeSpacedRepetition,
	ReminderTypeDeadline,
	ReminderTypeHabit,
	ReminderTypeContextual,
}

// ParseReminderType returns the ReminderType for s and whether s was recognized.
func ParseReminderType(s string) (ReminderType, bool) {
	for _, t := range ReminderTypes {
		if string(t) == s {
			return t, true
		}
	}
	return ReminderTypeDeadline, false
}

// ReminderTypeOrDefault parses s, falling back to deadline for unknown values.
func ReminderTypeOrDefault(s string) ReminderType {
	t, _ := ParseReminderType(s)
	return t
}

// ReminderStatus filters reminders by completion state.
type ReminderStatus string

const (
	ReminderStatusAny       ReminderStatus = ""
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusOverdue   ReminderStatus = "overdue"
)

// ParseReminderStatus maps s to a status filter. Unknown values apply no filter.
func ParseReminderStatus(s string) ReminderStatus {
	switch ReminderStatus(s) {
	case ReminderStatusCompleted, ReminderStatusPending, ReminderStatusOverdue:
		return ReminderStatus(s)
	default:
		return ReminderStatusAny
	}
}

// triggerLayouts are tried in order after RFC 3339. Timestamps without an
// offset are read as UTC.
var triggerLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTriggerDate parses an ISO-8601 timestamp. A trailing Z is accepted as
// the UTC designator.
func ParseTriggerDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range triggerLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewValidationError("trigger_date", "Invalid trigger date format", ErrInvalidTriggerDate)
}

// Reminder is a time-triggered task, optionally linked to a memory.
type Reminder struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	MemoryID      *uuid.UUID   `json:"memory_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ReminderType  ReminderType `json:"reminder_type"`
	TriggerDate   *time.Time   `json:"trigger_date"`
	RepeatPattern *string      `json:"repeat_pattern"`
	IsCompleted   bool         `json:"is_completed"`
	CompletedAt   *time.Time   `json:"completed_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Overdue is derived by MarkOverdue and never stored.
	Overdue bool `json:"is_overdue"`
}

// NewReminder builds a pending reminder owned by userID. Unknown types fall
// back to deadline; an empty repeat pattern is stored as nil.
func NewReminder(
	userID uuid.UUID,
	title, description, reminderType string,
	triggerDate *time.Time,
	repeatPattern string,
	memoryID *uuid.UUID,
	now time.Time,
) (*Reminder, error) {
	reminder := &Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		MemoryID:      memoryID,
		Title:         strings.TrimSpace(title),
		Description:   strings.TrimSpace(description),
		ReminderType:  ReminderTypeOrDefault(reminderType),
		TriggerDate:   triggerDate,
		RepeatPattern: optionalString(repeatPattern),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Validate checks the invariants a stored reminder must satisfy.
func (r *Reminder) Validate() error {
	if r.UserID == uuid.Nil {
		return NewValidationError("user_id", "user ID cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(r.Title) == "" {
		return NewValidationError("title", "Title is required", ErrEmptyTitle)
	}
	if _, ok := ParseReminderType(string(r.ReminderType)); !ok {
		return NewValidationError("reminder_type", "unknown reminder type", ErrValidation)
	}
	if r.IsCompleted != (r.CompletedAt != nil) {
		return NewValidationError("completed_at", "completed_at must be set exactly when completed", ErrValidation)
	}
	if err := validateText("title", r.Title); err != nil {
		return err
	}
	if err := validateText("description", r.Description); err != nil {
		return err
	}
	if r.RepeatPattern != nil {
		return validateText("repeat_pattern", *r.RepeatPattern)
	}
	return nil
}

// IsOverdue reports whether the reminder is pending with a trigger date
// before now.
func (r *Reminder) IsOverdue(now time.Time) bool {
	return r.TriggerDate != nil && !r.IsCompleted && r.TriggerDate.Before(now)
}

// MarkOverdue records IsOverdue(now) for serialization.
func (r *Reminder) MarkOverdue(now time.Time) *Reminder {
	r.Overdue = r.IsOverdue(now)
	return r
}

// Complete marks the reminder done at now.
func (r *Reminder) Complete(now time.Time) {
	completedAt := now.UTC()
	r.IsCompleted = true
	r.CompletedAt = &completedAt
	r.UpdatedAt = completedAt
}

// Uncomplete returns the reminder to pending.
func (r *Reminder) Uncomplete(now time.Time) {
	r.IsCompleted = false
	r.CompletedAt = nil
	r.UpdatedAt = now.UTC()
}

// ReminderPatch carries a partial update. Nil fields are left untouched.
// ClearTriggerDate and ClearMemoryID distinguish an explicit null from an
// absent field.
type ReminderPatch struct {
	Title            *string
	Description      *string
	ReminderType     *string
	TriggerDate      *time.Time
	ClearTriggerDate bool
	RepeatPattern    *string
	MemoryID         *uuid.UUID
	ClearMemoryID    bool
}

// Apply mutates r with the fields present in p. Memory ownership is checked
// by the caller before Apply.
func (p ReminderPatch) Apply(r *Reminder, now time.Time) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return NewValidationError("title", "Title cannot be empty", ErrEmptyTitle)
		}
		r.Title = title
	}
	if p.Description != nil {
		r.Description = strings.TrimSpace(*p.Description)
	}
	if p.ReminderType != nil {
		if t, ok := ParseReminderType(*p.ReminderType); ok {
			r.ReminderType = t
		}
	}
	switch {
	case p.ClearTriggerDate:
		r.TriggerDate = nil
	case p.TriggerDate != nil:
		trigger := p.TriggerDate.UTC()
		r.TriggerDate = &trigger
	}
	if p.RepeatPattern != nil {
		r.RepeatPattern = optionalString(*p.RepeatPattern)
	}
	switch {
	case p.ClearMemoryID:
		r.MemoryID = nil
	case p.MemoryID != nil:
		id := *p.MemoryID
		r.MemoryID = &id
	}
	r.UpdatedAt = now.UTC()
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
