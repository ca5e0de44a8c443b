package mocks

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// MockMemoryStore is an in-memory store.MemoryStore. Each Fn field, when
// set, replaces the default behavior of the matching method.
type MockMemoryStore struct {
	CreateFn      func(ctx context.Context, memory *domain.Memory) error
	GetByIDFn     func(ctx context.Context, userID, id uuid.UUID) (*domain.Memory, error)
	UpdateFn      func(ctx context.Context, memory *domain.Memory) error
	DeleteFn      func(ctx context.Context, userID, id uuid.UUID) error
	CountByUserFn func(ctx context.Context, userID uuid.UUID) (int, error)
	StatsFn       func(ctx context.Context, userID uuid.UUID) (*domain.MemoryStats, error)

	mu       sync.Mutex
	memories map[uuid.UUID]*domain.Memory
}

var _ store.MemoryStore = (*MockMemoryStore)(nil)

// NewMockMemoryStore creates a store seeded with memories.
func NewMockMemoryStore(memories ...*domain.Memory) *MockMemoryStore {
	m := &MockMemoryStore{memories: make(map[uuid.UUID]*domain.Memory)}
	for _, memory := range memories {
		m.memories[memory.ID] = copyMemory(memory)
	}
	return m
}

func copyMemory(memory *domain.Memory) *domain.Memory {
	c := *memory
	c.Tags = slices.Clone(memory.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c
}

// Create implements store.MemoryStore.
func (m *MockMemoryStore) Create(ctx context.Context, memory *domain.Memory) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, memory)
	}
	if err := memory.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.memories[memory.ID]; ok {
		return store.ErrDuplicate
	}
	m.memories[memory.ID] = copyMemory(memory)
	return nil
}

// GetByID implements store.MemoryStore.
func (m *MockMemoryStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Memory, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	memory, ok := m.memories[id]
	if !ok || memory.UserID != userID {
		return nil, store.ErrMemoryNotFound
	}
	return copyMemory(memory), nil
}

func matchesMemory(memory *domain.Memory, filter store.MemoryFilter) bool {
	if filter.Search != "" &&
		!strings.Contains(memory.Title, filter.Search) &&
		!strings.Contains(memory.Content, filter.Search) &&
		!slices.Contains(memory.Tags, filter.Search) {
		return false
	}
	if filter.MemoryType != nil && memory.MemoryType != *filter.MemoryType {
		return false
	}
	if filter.Importance != nil && memory.ImportanceLevel != *filter.Importance {
		return false
	}
	return true
}

// owned returns userID's memories matching filter, newest first.
func (m *MockMemoryStore) owned(userID uuid.UUID, filter store.MemoryFilter) []*domain.Memory {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domain.Memory
	for _, memory := range m.memories {
		if memory.UserID == userID && matchesMemory(memory, filter) {
			result = append(result, copyMemory(memory))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

// List implements store.MemoryStore.
func (m *MockMemoryStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.MemoryFilter,
	page domain.PageRequest,
) ([]*domain.Memory, int, error) {
	all := m.owned(userID, filter)
	return pageOf(all, page), len(all), nil
}

// Recent implements store.MemoryStore.
func (m *MockMemoryStore) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Memory, error) {
	all := m.owned(userID, store.MemoryFilter{})
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Update implements store.MemoryStore.
func (m *MockMemoryStore) Update(ctx context.Context, memory *domain.Memory) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, memory)
	}
	if err := memory.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.memories[memory.ID]
	if !ok || existing.UserID != memory.UserID {
		return store.ErrMemoryNotFound
	}
	m.memories[memory.ID] = copyMemory(memory)
	return nil
}

// Touch implements store.MemoryStore.
func (m *MockMemoryStore) Touch(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	memory, ok := m.memories[id]
	if !ok || memory.UserID != userID {
		return store.ErrMemoryNotFound
	}
	accessed := at.UTC()
	memory.LastAccessed = &accessed
	return nil
}

// Delete implements store.MemoryStore.
func (m *MockMemoryStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	memory, ok := m.memories[id]
	if !ok || memory.UserID != userID {
		return store.ErrMemoryNotFound
	}
	delete(m.memories, id)
	return nil
}

// CountByUser implements store.MemoryStore.
func (m *MockMemoryStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.CountByUserFn != nil {
		return m.CountByUserFn(ctx, userID)
	}
	return len(m.owned(userID, store.MemoryFilter{})), nil
}

// Stats implements store.MemoryStore.
func (m *MockMemoryStore) Stats(ctx context.Context, userID uuid.UUID) (*domain.MemoryStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, userID)
	}

	stats := domain.NewMemoryStats()
	for _, memory := range m.owned(userID, store.MemoryFilter{}) {
		stats.Total++
		stats.AddType(memory.MemoryType, 1)
		stats.AddImportance(memory.ImportanceLevel, 1)
	}
	return stats, nil
}

// WithTx returns the same mock.
func (m *MockMemoryStore) WithTx(tx *sql.Tx) store.MemoryStore {
	return m
}

// Stored returns the stored memory with id regardless of owner, or nil.
func (m *MockMemoryStore) Stored(id uuid.UUID) *domain.Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	memory, ok := m.memories[id]
	if !ok {
		return nil
	}
	return copyMemory(memory)
}

// pageOf slices items to the window described by page.
func pageOf[T any](items []T, page domain.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
