package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoryType classifies a memory.
type MemoryType string

const (
	MemoryTypeNote     MemoryType = "note"
	MemoryTypeProcess  MemoryType = "process"
	MemoryTypeLearning MemoryType = "learning"
	MemoryTypePersonal MemoryType = "personal"
)

// MemoryTypes lists every memory type in display order.
var MemoryTypes = []MemoryType{
	MemoryTypeNote,
	MemoryTypeProcess,
	MemoryTypeLearning,
	MemoryTypePersonal,
}

const (
	MinImportance     = 1
	MaxImportance     = 5
	DefaultImportance = MinImportance
)

// ParseMemoryType returns the MemoryType for s and whether s was recognized.
func ParseMemoryType(s string) (MemoryType, bool) {
	for _, t := range MemoryTypes {
		if string(t) == s {
			return t, true
		}
	}
	return MemoryTypeNote, false
}

// MemoryTypeOrDefault parses s, falling back to note for unknown values.
func MemoryTypeOrDefault(s string) MemoryType {
	t, _ := ParseMemoryType(s)
	return t
}

// ValidImportance reports whether level is within the accepted range.
func ValidImportance(level int) bool {
	return level >= MinImportance && level <= MaxImportance
}

// Memory is a user-authored note.
type Memory struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	MemoryType      MemoryType `json:"memory_type"`
	Tags            []string   `json:"tags"`
	ImportanceLevel int        `json:"importance_level"`
	IsEncrypted     bool       `json:"is_encrypted"`
	MediaURL        *string    `json:"media_url"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastAccessed    *time.Time `json:"last_accessed"`
}

// NewMemory builds a memory owned by userID. Unknown types and out-of-range
// importance levels fall back to their defaults instead of failing.
func NewMemory(
	userID uuid.UUID,
	title, content, memoryType string,
	tags []string,
	importance *int,
	now time.Time,
) (*Memory, error) {
	level := DefaultImportance
	if importance != nil && ValidImportance(*importance) {
		level = *importance
	}
	if tags == nil {
		tags = []string{}
	}

	memory := &Memory{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           strings.TrimSpace(title),
		Content:         content,
		MemoryType:      MemoryTypeOrDefault(memoryType),
		Tags:            tags,
		ImportanceLevel: level,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}

	if err := memory.Validate(); err != nil {
		return nil, err
	}
	return memory, nil
}

// Validate checks the invariants a stored memory must satisfy.
func (m *Memory) Validate() error {
	if m.UserID == uuid.Nil {
		return NewValidationError("user_id", "user ID cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(m.Title) == "" {
		return NewValidationError("title", "Title is required", ErrEmptyTitle)
	}
	if _, ok := ParseMemoryType(string(m.MemoryType)); !ok {
		return NewValidationError("memory_type", "unknown memory type", ErrValidation)
	}
	if !ValidImportance(m.ImportanceLevel) {
		return NewValidationError("importance_level", "importance level must be between 1 and 5", ErrValidation)
	}
	if err := validateText("title", m.Title); err != nil {
		return err
	}
	if err := validateText("content", m.Content); err != nil {
		return err
	}
	if err := validateText("tags", m.Tags...); err != nil {
		return err
	}
	if m.MediaURL != nil {
		return validateText("media_url", *m.MediaURL)
	}
	return nil
}

// MemoryPatch carries a partial update. Nil fields are left untouched.
type MemoryPatch struct {
	Title           *string
	Content         *string
	MemoryType      *string
	Tags            *[]string
	ImportanceLevel *int
	IsEncrypted     *bool
	MediaURL        *string
}

// Apply mutates m with the fields present in p. An empty title is rejected;
// unknown types and out-of-range importance levels are ignored.
func (p MemoryPatch) Apply(m *Memory, now time.Time) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return NewValidationError("title", "Title cannot be empty", ErrEmptyTitle)
		}
		m.Title = title
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.MemoryType != nil {
		if t, ok := ParseMemoryType(*p.MemoryType); ok {
			m.MemoryType = t
		}
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		m.Tags = tags
	}
	if p.ImportanceLevel != nil && ValidImportance(*p.ImportanceLevel) {
		m.ImportanceLevel = *p.ImportanceLevel
	}
	if p.IsEncrypted != nil {
		m.IsEncrypted = *p.IsEncrypted
	}
	if p.MediaURL != nil {
		if *p.MediaURL == "" {
			m.MediaURL = nil
		} else {
			url := *p.MediaURL
			m.MediaURL = &url
		}
	}
	m.UpdatedAt = now.UTC()
	return nil
}

// MemoryStats aggregates a user's memories by type and importance.
type MemoryStats struct {
	Total            int                `json:"total_memories"`
	TypeCounts       map[MemoryType]int `json:"type_counts"`
	ImportanceCounts map[string]int     `json:"importance_counts"`
}

// NewMemoryStats returns stats with every type and importance key present.
func NewMemoryStats() *MemoryStats {
	stats := &MemoryStats{
		TypeCounts:       make(map[MemoryType]int, len(MemoryTypes)),
		ImportanceCounts: make(map[string]int, MaxImportance),
	}
	for _, t := range MemoryTypes {
		stats.TypeCounts[t] = 0
	}
	for level := MinImportance; level <= MaxImportance; level++ {
		stats.ImportanceCounts[importanceKey(level)] = 0
	}
	return stats
}

// AddType records count memories of type t.
func (s *MemoryStats) AddType(t MemoryType, count int) {
	s.TypeCounts[t] += count
}

// AddImportance records count memories at the given importance level.
func (s *MemoryStats) AddImportance(level, count int) {
	if !ValidImportance(level) {
		return
	}
	s.ImportanceCounts[importanceKey(level)] += count
}

func importanceKey(level int) string {
	return strconv.Itoa(level)
}
