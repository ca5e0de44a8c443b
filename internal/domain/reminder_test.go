package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriggerDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"zulu suffix", "2025-06-01T09:30:00Z", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		{"fractional zulu", "2025-06-01T09:30:00.250Z", time.Date(2025, 6, 1, 9, 30, 0, 250000000, time.UTC)},
		{"offset", "2025-06-01T11:30:00+02:00", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		{"naive timestamp is utc", "2025-06-01T09:30:00", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		{"minutes only", "2025-06-01T09:30", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		{"date only", "2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTriggerDate(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	for _, bad := range []string{"tomorrow", "2025-13-01T00:00:00Z", "06/01/2025"} {
		_, err := ParseTriggerDate(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
		assert.ErrorIs(t, err, ErrInvalidTriggerDate, bad)
	}
}

func TestNewReminderDefaults(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	reminder, err := NewReminder(uuid.New(), " Pay rent ", " monthly ", "nonsense", nil, "   ", nil, now)
	require.NoError(t, err)

	assert.Equal(t, "Pay rent", reminder.Title)
	assert.Equal(t, "monthly", reminder.Description)
	assert.Equal(t, ReminderTypeDeadline, reminder.ReminderType)
	assert.Nil(t, reminder.RepeatPattern, "blank repeat pattern is stored as nil")
	assert.False(t, reminder.IsCompleted)
	assert.Nil(t, reminder.CompletedAt)

	_, err = NewReminder(uuid.New(), "", "", "habit", nil, "", nil, now)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestReminderValidateRejectsNUL(t *testing.T) {
	now := time.Now()

	_, err := NewReminder(uuid.New(), "Call", "line\x00break", "habit", nil, "", nil, now)
	assert.ErrorIs(t, err, ErrInvalidText)

	_, err = NewReminder(uuid.New(), "Call", "", "habit", nil, "daily\x00", nil, now)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "repeat_pattern", verr.Field)
}

func TestReminderOverdueAndCompletion(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	reminder, err := NewReminder(uuid.New(), "Call", "", "deadline", &past, "", nil, now.Add(-48*time.Hour))
	require.NoError(t, err)
	assert.True(t, reminder.IsOverdue(now))
	assert.True(t, reminder.MarkOverdue(now).Overdue)

	reminder.Complete(now)
	assert.True(t, reminder.IsCompleted)
	require.NotNil(t, reminder.CompletedAt)
	assert.Equal(t, now, *reminder.CompletedAt)
	assert.False(t, reminder.IsOverdue(now))
	assert.False(t, reminder.MarkOverdue(now).Overdue)
	require.NoError(t, reminder.Validate())

	reminder.Uncomplete(now.Add(time.Minute))
	assert.False(t, reminder.IsCompleted)
	assert.Nil(t, reminder.CompletedAt)
	assert.True(t, reminder.IsOverdue(now))

	upcoming, err := NewReminder(uuid.New(), "Later", "", "", &future, "", nil, now)
	require.NoError(t, err)
	assert.False(t, upcoming.IsOverdue(now))

	undated, err := NewReminder(uuid.New(), "Someday", "", "", nil, "", nil, now)
	require.NoError(t, err)
	assert.False(t, undated.IsOverdue(now))
}

func TestReminderPatchApply(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	trigger := now.Add(24 * time.Hour)
	memoryID := uuid.New()

	reminder, err := NewReminder(uuid.New(), "Title", "", "habit", &trigger, "daily", &memoryID, now)
	require.NoError(t, err)

	err = ReminderPatch{
		ReminderType:     strPtr("unknown"),
		ClearTriggerDate: true,
		RepeatPattern:    strPtr(""),
		ClearMemoryID:    true,
	}.Apply(reminder, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, ReminderTypeHabit, reminder.ReminderType)
	assert.Nil(t, reminder.TriggerDate)
	assert.Nil(t, reminder.RepeatPattern)
	assert.Nil(t, reminder.MemoryID)
	assert.Equal(t, now.Add(time.Minute), reminder.UpdatedAt)

	err = ReminderPatch{Title: strPtr(" ")}.Apply(reminder, now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseReminderStatus(t *testing.T) {
	assert.Equal(t, ReminderStatusCompleted, ParseReminderStatus("completed"))
	assert.Equal(t, ReminderStatusPending, ParseReminderStatus("pending"))
	assert.Equal(t, ReminderStatusOverdue, ParseReminderStatus("overdue"))
	assert.Equal(t, ReminderStatusAny, ParseReminderStatus("archived"))
	assert.Equal(t, ReminderStatusAny, ParseReminderStatus(""))
}
