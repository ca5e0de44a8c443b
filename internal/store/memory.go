package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// MemoryFilter narrows a memory listing. Zero values disable a filter.
type MemoryFilter struct {
	// Search matches a title substring, a content substring or an exact tag.
	Search     string
	MemoryType *domain.MemoryType
	Importance *int
}

// MemoryStore defines the interface for memory persistence. Every lookup is
// scoped by owner: a memory owned by someone else is reported as
// ErrMemoryNotFound.
type MemoryStore interface {
	Create(ctx context.Context, memory *domain.Memory) error

	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Memory, error)

	// List returns one page ordered by created_at descending along with the
	// total number of matching rows.
	List(
		ctx context.Context,
		userID uuid.UUID,
		filter MemoryFilter,
		page domain.PageRequest,
	) ([]*domain.Memory, int, error)

	// Recent returns up to limit memories, newest first.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Memory, error)

	Update(ctx context.Context, memory *domain.Memory) error

	// Touch sets last_accessed without changing updated_at.
	Touch(ctx context.Context, userID, id uuid.UUID, at time.Time) error

	Delete(ctx context.Context, userID, id uuid.UUID) error

	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	Stats(ctx context.Context, userID uuid.UUID) (*domain.MemoryStats, error)

	// WithTx returns a MemoryStore bound to tx.
	WithTx(tx *sql.Tx) MemoryStore
}
