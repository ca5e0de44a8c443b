package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// MemoryInput carries the fields of a new memory. Zero values take the
// defaults: note type, importance 1, no tags.
type MemoryInput struct {
	Title           string
	Content         string
	MemoryType      string
	Tags            []string
	ImportanceLevel *int
	IsEncrypted     bool
	MediaURL        string
}

// MemoryService provides memory-related operations
type MemoryService interface {
	// List returns one page of the caller's memories, newest first.
	List(
		ctx context.Context,
		userID uuid.UUID,
		filter store.MemoryFilter,
		page domain.PageRequest,
	) (*domain.Page[*domain.Memory], error)

	// Get returns a memory and records the access time.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Memory, error)

	// Create stores a new memory, enforcing the free tier quota.
	Create(ctx context.Context, userID uuid.UUID, input MemoryInput) (*domain.Memory, error)

	// Update applies a partial update.
	Update(ctx context.Context, userID, id uuid.UUID, patch domain.MemoryPatch) (*domain.Memory, error)

	Delete(ctx context.Context, userID, id uuid.UUID) error

	Stats(ctx context.Context, userID uuid.UUID) (*domain.MemoryStats, error)
}

type memoryServiceImpl struct {
	tx       store.Transactor
	users    store.UserStore
	memories store.MemoryStore
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

var _ MemoryService = (*memoryServiceImpl)(nil)

// NewMemoryService creates a MemoryService.
// It returns an error if any of the required dependencies are nil.
func NewMemoryService(
	tx store.Transactor,
	users store.UserStore,
	memories store.MemoryStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (MemoryService, error) {
	if tx == nil || users == nil || memories == nil {
		return nil, &ServiceError{
			Service:   "memory",
			Operation: "create_service",
			Message:   "transactor, user store and memory store are required",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := buildOptions(opts)
	return &memoryServiceImpl{
		tx:       tx,
		users:    users,
		memories: memories,
		emitter:  emitter,
		now:      o.now,
		logger:   logger.With(slog.String("component", "memory_service")),
	}, nil
}

// List implements MemoryService.
func (s *memoryServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.MemoryFilter,
	page domain.PageRequest,
) (*domain.Page[*domain.Memory], error) {
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.memories.List(ctx, userID, filter, page)
	if err != nil {
		return nil, NewServiceError("memory", "list", "failed to list memories", err)
	}
	return domain.NewPage(items, page, total), nil
}

// Get implements MemoryService.
func (s *memoryServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Memory, error) {
	memory, err := s.memories.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("memory", "get", "failed to load memory", err)
	}

	accessed := s.now().UTC()
	if err := s.memories.Touch(ctx, userID, id, accessed); err != nil {
		return nil, NewServiceError("memory", "get", "failed to record access", err)
	}
	memory.LastAccessed = &accessed
	return memory, nil
}

// Create implements MemoryService.
func (s *memoryServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
	input MemoryInput,
) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var created *domain.Memory
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}

		memories := s.memories.WithTx(tx)
		count, err := memories.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if !domain.CanCreateMemory(user.SubscriptionType, count) {
			log.Debug("memory quota reached",
				slog.String("user_id", userID.String()),
				slog.Int("memory_count", count))
			return newMemoryLimitError(count)
		}

		memory, err := domain.NewMemory(userID, input.Title, input.Content, input.MemoryType,
			input.Tags, input.ImportanceLevel, now)
		if err != nil {
			return err
		}
		memory.IsEncrypted = input.IsEncrypted
		if url := strings.TrimSpace(input.MediaURL); url != "" {
			memory.MediaURL = &url
		}

		if err := memories.Create(ctx, memory); err != nil {
			return err
		}
		created = memory
		return nil
	})
	if err != nil {
		return nil, NewServiceError("memory", "create", "failed to create memory", err)
	}

	log.Info("memory created",
		slog.String("memory_id", created.ID.String()),
		slog.String("user_id", userID.String()))
	publish(ctx, s.emitter, s.logger, events.TypeMemoryCreated, userID, events.MemoryPayload{
		MemoryID:   created.ID,
		MemoryType: string(created.MemoryType),
	}, now)
	return created, nil
}

// Update implements MemoryService.
func (s *memoryServiceImpl) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	patch domain.MemoryPatch,
) (*domain.Memory, error) {
	memory, err := s.memories.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("memory", "update", "failed to load memory", err)
	}

	if err := patch.Apply(memory, s.now()); err != nil {
		return nil, err
	}
	if err := s.memories.Update(ctx, memory); err != nil {
		return nil, NewServiceError("memory", "update", "failed to update memory", err)
	}
	return memory, nil
}

// Delete implements MemoryService.
func (s *memoryServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.memories.Delete(ctx, userID, id); err != nil {
		return NewServiceError("memory", "delete", "failed to delete memory", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("memory deleted",
		slog.String("memory_id", id.String()),
		slog.String("user_id", userID.String()))
	publish(ctx, s.emitter, s.logger, events.TypeMemoryDeleted, userID,
		events.MemoryPayload{MemoryID: id}, s.now())
	return nil
}

// Stats implements MemoryService.
func (s *memoryServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*domain.MemoryStats, error) {
	stats, err := s.memories.Stats(ctx, userID)
	if err != nil {
		return nil, NewServiceError("memory", "stats", "failed to aggregate memories", err)
	}
	return stats, nil
}

// isNotFound reports whether err is any store not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
