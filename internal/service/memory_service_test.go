package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/mocks"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFixture struct {
	svc      MemoryService
	tx       *mocks.MockTransactor
	users    *mocks.MockUserStore
	memories *mocks.MockMemoryStore
	emitter  *recordingEmitter
}

func newMemoryFixture(t *testing.T, users []*domain.User, memories ...*domain.Memory) *memoryFixture {
	t.Helper()
	f := &memoryFixture{
		tx:       &mocks.MockTransactor{},
		users:    mocks.NewMockUserStore(users...),
		memories: mocks.NewMockMemoryStore(memories...),
		emitter:  &recordingEmitter{},
	}
	svc, err := NewMemoryService(f.tx, f.users, f.memories, f.emitter, nil, fixedClock())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewMemoryService_RequiresDependencies(t *testing.T) {
	_, err := NewMemoryService(nil, mocks.NewMockUserStore(), mocks.NewMockMemoryStore(), nil, nil)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "create_service", serviceErr.Operation)
}

func TestMemoryService_Create(t *testing.T) {
	t.Run("applies defaults and emits event", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionFree)
		f := newMemoryFixture(t, []*domain.User{user})

		memory, err := f.svc.Create(context.Background(), user.ID, MemoryInput{
			Title:    "  Groceries ",
			Content:  "milk",
			Tags:     []string{"home"},
			MediaURL: " https://example.com/a.png ",
		})
		require.NoError(t, err)

		assert.Equal(t, "Groceries", memory.Title)
		assert.Equal(t, domain.MemoryTypeNote, memory.MemoryType)
		assert.Equal(t, domain.DefaultImportance, memory.ImportanceLevel)
		require.NotNil(t, memory.MediaURL)
		assert.Equal(t, "https://example.com/a.png", *memory.MediaURL)
		assert.Equal(t, testNow, memory.CreatedAt)
		assert.NotNil(t, f.memories.Stored(memory.ID))
		assert.Equal(t, 1, f.tx.Calls)

		require.Equal(t, []string{events.TypeMemoryCreated}, f.emitter.types())
		var payload events.MemoryPayload
		require.NoError(t, json.Unmarshal(f.emitter.events[0].Payload, &payload))
		assert.Equal(t, memory.ID, payload.MemoryID)
		assert.Equal(t, "note", payload.MemoryType)
	})

	t.Run("unknown type and importance fall back", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionFree)
		f := newMemoryFixture(t, []*domain.User{user})
		level := 9

		memory, err := f.svc.Create(context.Background(), user.ID, MemoryInput{
			Title:           "x",
			MemoryType:      "diary",
			ImportanceLevel: &level,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.MemoryTypeNote, memory.MemoryType)
		assert.Equal(t, domain.DefaultImportance, memory.ImportanceLevel)
	})

	t.Run("blank title", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionFree)
		f := newMemoryFixture(t, []*domain.User{user})

		_, err := f.svc.Create(context.Background(), user.ID, MemoryInput{Title: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("free tier quota", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionFree)
		f := newMemoryFixture(t, []*domain.User{user})
		f.memories.CountByUserFn = func(ctx context.Context, userID uuid.UUID) (int, error) {
			return domain.FreeMemoryLimit, nil
		}

		_, err := f.svc.Create(context.Background(), user.ID, MemoryInput{Title: "one too many"})
		assert.ErrorIs(t, err, ErrQuotaExceeded)
		var quotaErr *QuotaError
		require.ErrorAs(t, err, &quotaErr)
		assert.Equal(t, MemoryLimitMessage, quotaErr.Message)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("premium has no quota", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionPremium)
		f := newMemoryFixture(t, []*domain.User{user})
		f.memories.CountByUserFn = func(ctx context.Context, userID uuid.UUID) (int, error) {
			return 5000, nil
		}

		_, err := f.svc.Create(context.Background(), user.ID, MemoryInput{Title: "more"})
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newMemoryFixture(t, nil)

		_, err := f.svc.Create(context.Background(), uuid.New(), MemoryInput{Title: "x"})
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("emitter failure does not fail create", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionFree)
		f := newMemoryFixture(t, []*domain.User{user})
		f.emitter.err = errBoom

		_, err := f.svc.Create(context.Background(), user.ID, MemoryInput{Title: "x"})
		assert.NoError(t, err)
	})

	t.Run("transaction failure", func(t *testing.T) {
		user := newTestUser(t, domain.SubscriptionFree)
		f := newMemoryFixture(t, []*domain.User{user})
		f.tx.Err = store.ErrTransactionFailed

		_, err := f.svc.Create(context.Background(), user.ID, MemoryInput{Title: "x"})
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
	})
}

func TestMemoryService_List(t *testing.T) {
	user := newTestUser(t, domain.SubscriptionFree)
	other := newTestUser(t, domain.SubscriptionFree)
	older := newTestMemory(t, user.ID, "older", 2*time.Hour)
	newer := newTestMemory(t, user.ID, "newer", time.Hour)
	foreign := newTestMemory(t, other.ID, "foreign", time.Minute)
	f := newMemoryFixture(t, []*domain.User{user, other}, older, newer, foreign)

	page, err := f.svc.List(context.Background(), user.ID, store.MemoryFilter{Search: "  "}, domain.NewPageRequest(1, 1))
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, newer.ID, page.Items[0].ID)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)

	page, err = f.svc.List(context.Background(), user.ID, store.MemoryFilter{Search: "older"}, domain.NewPageRequest(1, 20))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, older.ID, page.Items[0].ID)
}

func TestMemoryService_GetTouchesAccess(t *testing.T) {
	user := newTestUser(t, domain.SubscriptionFree)
	memory := newTestMemory(t, user.ID, "x", time.Hour)
	f := newMemoryFixture(t, []*domain.User{user}, memory)

	found, err := f.svc.Get(context.Background(), user.ID, memory.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastAccessed)
	assert.Equal(t, testNow, *found.LastAccessed)
	assert.Equal(t, testNow, *f.memories.Stored(memory.ID).LastAccessed)
	assert.Equal(t, memory.UpdatedAt, f.memories.Stored(memory.ID).UpdatedAt)

	_, err = f.svc.Get(context.Background(), uuid.New(), memory.ID)
	assert.ErrorIs(t, err, store.ErrMemoryNotFound)
}

func TestMemoryService_Update(t *testing.T) {
	user := newTestUser(t, domain.SubscriptionFree)
	memory := newTestMemory(t, user.ID, "before", time.Hour)
	f := newMemoryFixture(t, []*domain.User{user}, memory)

	title := "after"
	tags := []string{"a", "b"}
	level := 4
	updated, err := f.svc.Update(context.Background(), user.ID, memory.ID, domain.MemoryPatch{
		Title:           &title,
		Tags:            &tags,
		ImportanceLevel: &level,
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, []string{"a", "b"}, f.memories.Stored(memory.ID).Tags)
	assert.Equal(t, 4, updated.ImportanceLevel)
	assert.Equal(t, testNow, updated.UpdatedAt)
	assert.Equal(t, memory.Content, updated.Content)

	empty := " "
	_, err = f.svc.Update(context.Background(), user.ID, memory.ID, domain.MemoryPatch{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Update(context.Background(), uuid.New(), memory.ID, domain.MemoryPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrMemoryNotFound)
}

func TestMemoryService_Delete(t *testing.T) {
	user := newTestUser(t, domain.SubscriptionFree)
	memory := newTestMemory(t, user.ID, "x", time.Hour)
	f := newMemoryFixture(t, []*domain.User{user}, memory)

	require.NoError(t, f.svc.Delete(context.Background(), user.ID, memory.ID))
	assert.Nil(t, f.memories.Stored(memory.ID))
	assert.Equal(t, []string{events.TypeMemoryDeleted}, f.emitter.types())

	err := f.svc.Delete(context.Background(), user.ID, memory.ID)
	assert.ErrorIs(t, err, store.ErrMemoryNotFound)
}

func TestMemoryService_Stats(t *testing.T) {
	user := newTestUser(t, domain.SubscriptionFree)
	first := newTestMemory(t, user.ID, "a", time.Hour)
	second := newTestMemory(t, user.ID, "b", time.Hour)
	second.MemoryType = domain.MemoryTypeLearning
	second.ImportanceLevel = 5
	f := newMemoryFixture(t, []*domain.User{user}, first, second)

	stats, err := f.svc.Stats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.TypeCounts[domain.MemoryTypeNote])
	assert.Equal(t, 1, stats.TypeCounts[domain.MemoryTypeLearning])
	assert.Equal(t, 0, stats.TypeCounts[domain.MemoryTypePersonal])
	assert.Equal(t, 1, stats.ImportanceCounts["1"])
	assert.Equal(t, 1, stats.ImportanceCounts["5"])
	assert.Equal(t, 0, stats.ImportanceCounts["3"])
}
