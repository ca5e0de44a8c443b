package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
// Tags bound the input size; the remaining field rules are enforced by the
// domain constructor.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
	Name     string `json:"name"     validate:"max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

// AuthResponse is returned by register, login and refresh. The token itself
// travels in the session cookie.
type AuthResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

// ProfileRequest defines the payload for a profile update. Absent fields are
// left unchanged.
type ProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,max=254"`
}

// ChangePasswordRequest defines the payload for the change-password endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"max=72"`
	NewPassword     string `json:"new_password"     validate:"max=72"`
}

// MemoryRequest is shared by memory create and update. Importance accepts a
// number or a numeric string; anything else falls back to the default.
type MemoryRequest struct {
	Title           *string         `json:"title"`
	Content         *string         `json:"content"`
	MemoryType      *string         `json:"memory_type"`
	Tags            *[]string       `json:"tags"`
	ImportanceLevel json.RawMessage `json:"importance_level"`
	IsEncrypted     *bool           `json:"is_encrypted"`
	MediaURL        *string         `json:"media_url"`
}

// importance returns the requested importance level, or nil when it is
// absent or not an integer.
func (req MemoryRequest) importance() *int {
	raw := bytes.TrimSpace(req.ImportanceLevel)
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	level, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	return &level
}

// ToInput converts the request for MemoryService.Create.
func (req MemoryRequest) ToInput() service.MemoryInput {
	input := service.MemoryInput{
		Title:           deref(req.Title),
		Content:         deref(req.Content),
		MemoryType:      deref(req.MemoryType),
		ImportanceLevel: req.importance(),
		IsEncrypted:     req.IsEncrypted != nil && *req.IsEncrypted,
		MediaURL:        deref(req.MediaURL),
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
	}
	return input
}

// ToPatch converts the request for MemoryService.Update.
func (req MemoryRequest) ToPatch() domain.MemoryPatch {
	return domain.MemoryPatch{
		Title:           req.Title,
		Content:         req.Content,
		MemoryType:      req.MemoryType,
		Tags:            req.Tags,
		ImportanceLevel: req.importance(),
		IsEncrypted:     req.IsEncrypted,
		MediaURL:        req.MediaURL,
	}
}

// ReminderRequest is shared by reminder create and update. TriggerDate and
// MemoryID keep their raw form so that an explicit null can clear them.
type ReminderRequest struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	ReminderType  *string         `json:"reminder_type"`
	TriggerDate   json.RawMessage `json:"trigger_date"`
	RepeatPattern *string         `json:"repeat_pattern"`
	MemoryID      json.RawMessage `json:"memory_id"`
}

// triggerDate reports whether the field was sent and the parsed value. A
// null or empty string yields (true, nil).
func (req ReminderRequest) triggerDate() (bool, *time.Time, error) {
	raw := bytes.TrimSpace(req.TriggerDate)
	if len(raw) == 0 {
		return false, nil, nil
	}
	if isJSONNull(raw) {
		return true, nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return true, nil, domain.NewValidationError(
			"trigger_date", "Invalid trigger date format", domain.ErrInvalidTriggerDate)
	}
	if strings.TrimSpace(text) == "" {
		return true, nil, nil
	}

	t, err := domain.ParseTriggerDate(text)
	if err != nil {
		return true, nil, err
	}
	return true, &t, nil
}

// memoryID reports whether the field was sent and the referenced memory. An
// identifier that is not a UUID cannot name a memory the caller owns.
func (req ReminderRequest) memoryID() (bool, *uuid.UUID, error) {
	raw := bytes.TrimSpace(req.MemoryID)
	if len(raw) == 0 {
		return false, nil, nil
	}
	if isJSONNull(raw) {
		return true, nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return true, nil, service.ErrAssociatedMemoryNotFound
	}
	if strings.TrimSpace(text) == "" {
		return true, nil, nil
	}

	id, err := uuid.Parse(strings.TrimSpace(text))
	if err != nil {
		return true, nil, service.ErrAssociatedMemoryNotFound
	}
	return true, &id, nil
}

// ToInput converts the request for ReminderService.Create.
func (req ReminderRequest) ToInput() (service.ReminderInput, error) {
	_, trigger, err := req.triggerDate()
	if err != nil {
		return service.ReminderInput{}, err
	}
	_, memoryID, err := req.memoryID()
	if err != nil {
		return service.ReminderInput{}, err
	}

	return service.ReminderInput{
		Title:         deref(req.Title),
		Description:   deref(req.Description),
		ReminderType:  deref(req.ReminderType),
		TriggerDate:   trigger,
		RepeatPattern: deref(req.RepeatPattern),
		MemoryID:      memoryID,
	}, nil
}

// ToPatch converts the request for ReminderService.Update.
func (req ReminderRequest) ToPatch() (domain.ReminderPatch, error) {
	patch := domain.ReminderPatch{
		Title:         req.Title,
		Description:   req.Description,
		ReminderType:  req.ReminderType,
		RepeatPattern: req.RepeatPattern,
	}

	sent, trigger, err := req.triggerDate()
	if err != nil {
		return domain.ReminderPatch{}, err
	}
	if sent {
		patch.TriggerDate = trigger
		patch.ClearTriggerDate = trigger == nil
	}

	sent, memoryID, err := req.memoryID()
	if err != nil {
		return domain.ReminderPatch{}, err
	}
	if sent {
		patch.MemoryID = memoryID
		patch.ClearMemoryID = memoryID == nil
	}

	return patch, nil
}

// MemoryResponse wraps a single memory.
type MemoryResponse struct {
	Message string         `json:"message,omitempty"`
	Memory  *domain.Memory `json:"memory"`
}

// MemorySummary is a memory without its content, used where many memories
// are shown at once.
type MemorySummary struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	Title           string            `json:"title"`
	MemoryType      domain.MemoryType `json:"memory_type"`
	Tags            []string          `json:"tags"`
	ImportanceLevel int               `json:"importance_level"`
	IsEncrypted     bool              `json:"is_encrypted"`
	MediaURL        *string           `json:"media_url"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	LastAccessed    *time.Time        `json:"last_accessed"`
}

// NewMemorySummary drops the content of m.
func NewMemorySummary(m *domain.Memory) MemorySummary {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return MemorySummary{
		ID:              m.ID,
		UserID:          m.UserID,
		Title:           m.Title,
		MemoryType:      m.MemoryType,
		Tags:            tags,
		ImportanceLevel: m.ImportanceLevel,
		IsEncrypted:     m.IsEncrypted,
		MediaURL:        m.MediaURL,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		LastAccessed:    m.LastAccessed,
	}
}

// InsightsResponse carries AI insights for one memory.
type InsightsResponse struct {
	MemoryID uuid.UUID              `json:"memory_id"`
	Insights *domain.MemoryInsights `json:"insights"`
}

// ReminderResponse wraps a single reminder.
type ReminderResponse struct {
	Message  string           `json:"message,omitempty"`
	Reminder *domain.Reminder `json:"reminder"`
}

// ReminderListResponse is returned by the upcoming and overdue endpoints.
type ReminderListResponse struct {
	Reminders []*domain.Reminder `json:"reminders"`
	Count     int                `json:"count"`
}

// UserResponse wraps a user.
type UserResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

// SubscriptionChangeResponse is returned by upgrade and downgrade.
type SubscriptionChangeResponse struct {
	Message          string                  `json:"message"`
	SubscriptionType domain.SubscriptionType `json:"subscription_type"`
}

// DashboardResponse is the landing-page aggregate.
type DashboardResponse struct {
	User              *domain.User           `json:"user"`
	Stats             service.DashboardStats `json:"stats"`
	RecentMemories    []MemorySummary        `json:"recent_memories"`
	UpcomingReminders []*domain.Reminder     `json:"upcoming_reminders"`
}

// NewDashboardResponse renders d with content-free memories.
func NewDashboardResponse(d *service.Dashboard) DashboardResponse {
	recent := make([]MemorySummary, 0, len(d.RecentMemories))
	for _, m := range d.RecentMemories {
		recent = append(recent, NewMemorySummary(m))
	}
	upcoming := d.UpcomingReminders
	if upcoming == nil {
		upcoming = []*domain.Reminder{}
	}
	return DashboardResponse{
		User:              d.User,
		Stats:             d.Stats,
		RecentMemories:    recent,
		UpcomingReminders: upcoming,
	}
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

func isJSONNull(raw []byte) bool {
	return bytes.Equal(raw, []byte("null"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
