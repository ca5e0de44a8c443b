package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
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

const memoryColumns = `id, user_id, title, content, memory_type, tags, importance_level,
	is_encrypted, media_url, created_at, updated_at, last_accessed`

// PostgresMemoryStore implements store.MemoryStore on PostgreSQL.
type PostgresMemoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemoryStore creates a memory store over db.
func NewPostgresMemoryStore(db store.DBTX, logger *slog.Logger) *PostgresMemoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_store")),
	}
}

// Ensure PostgresMemoryStore implements store.MemoryStore
var _ store.MemoryStore = (*PostgresMemoryStore)(nil)

// Create implements store.MemoryStore.Create.
func (s *PostgresMemoryStore) Create(ctx context.Context, memory *domain.Memory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := memory.Validate(); err != nil {
		log.Warn("memory validation failed during create",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return err
	}

	tags, err := encodeTags(memory.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (`+memoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		memory.ID,
		memory.UserID,
		memory.Title,
		memory.Content,
		string(memory.MemoryType),
		tags,
		memory.ImportanceLevel,
		memory.IsEncrypted,
		memory.MediaURL,
		memory.CreatedAt,
		memory.UpdatedAt,
		memory.LastAccessed,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("memory owner does not exist",
				slog.String("memory_id", memory.ID.String()),
				slog.String("user_id", memory.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, memory.UserID)
		}
		log.Error("failed to create memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return store.NewStoreError("memory", "create", "failed to insert memory", MapError(err))
	}

	log.Debug("memory created",
		slog.String("memory_id", memory.ID.String()),
		slog.String("user_id", memory.UserID.String()))
	return nil
}

// GetByID implements store.MemoryStore.GetByID.
func (s *PostgresMemoryStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Memory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE id = $1 AND user_id = $2`,
		id, userID)

	memory, err := scanMemory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memory not found", slog.String("memory_id", id.String()))
			return nil, store.ErrMemoryNotFound
		}
		log.Error("failed to load memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", id.String()))
		return nil, store.NewStoreError("memory", "get", "failed to load memory", MapError(err))
	}
	return memory, nil
}

// memoryWhere builds the WHERE clause shared by List and its count query.
func memoryWhere(userID uuid.UUID, filter store.MemoryFilter) (string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(strpos(title, $%d) > 0 OR strpos(content, $%d) > 0 OR tags @> jsonb_build_array($%d::text))",
			n, n, n))
	}
	if filter.MemoryType != nil {
		args = append(args, string(*filter.MemoryType))
		conditions = append(conditions, fmt.Sprintf("memory_type = $%d", len(args)))
	}
	if filter.Importance != nil {
		args = append(args, *filter.Importance)
		conditions = append(conditions, fmt.Sprintf("importance_level = $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

// List implements store.MemoryStore.List.
func (s *PostgresMemoryStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.MemoryFilter,
	page domain.PageRequest,
) ([]*domain.Memory, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := memoryWhere(userID, filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE `+where, args...).Scan(&total); err != nil {
		log.Error("failed to count memories", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("memory", "list", "failed to count memories", MapError(err))
	}

	n := len(args)
	query := fmt.Sprintf(
		`SELECT %s FROM memories WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		memoryColumns, where, n+1, n+2)
	args = append(args, page.Limit(), page.Offset())

	memories, err := s.queryMemories(ctx, query, args...)
	if err != nil {
		log.Error("failed to list memories", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("memory", "list", "failed to list memories", MapError(err))
	}
	return memories, total, nil
}

// Recent implements store.MemoryStore.Recent.
func (s *PostgresMemoryStore) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Memory, error) {
	memories, err := s.queryMemories(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, store.NewStoreError("memory", "recent", "failed to list recent memories", MapError(err))
	}
	return memories, nil
}

func (s *PostgresMemoryStore) queryMemories(ctx context.Context, query string, args ...any) ([]*domain.Memory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	memories := make([]*domain.Memory, 0)
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}

// Update implements store.MemoryStore.Update.
func (s *PostgresMemoryStore) Update(ctx context.Context, memory *domain.Memory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := memory.Validate(); err != nil {
		return err
	}
	tags, err := encodeTags(memory.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE memories
		SET title = $3, content = $4, memory_type = $5, tags = $6, importance_level = $7,
		    is_encrypted = $8, media_url = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2`,
		memory.ID,
		memory.UserID,
		memory.Title,
		memory.Content,
		string(memory.MemoryType),
		tags,
		memory.ImportanceLevel,
		memory.IsEncrypted,
		memory.MediaURL,
		memory.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return store.NewStoreError("memory", "update", "failed to update memory", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrMemoryNotFound)
}

// Touch implements store.MemoryStore.Touch.
func (s *PostgresMemoryStore) Touch(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE memories SET last_accessed = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, at)
	if err != nil {
		return store.NewStoreError("memory", "touch", "failed to record access", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrMemoryNotFound)
}

// Delete implements store.MemoryStore.Delete.
func (s *PostgresMemoryStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM memories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete memory",
			slog.String("error", err.Error()),
			slog.String("memory_id", id.String()))
		return store.NewStoreError("memory", "delete", "failed to delete memory", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrMemoryNotFound)
}

// CountByUser implements store.MemoryStore.CountByUser.
func (s *PostgresMemoryStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("memory", "count", "failed to count memories", MapError(err))
	}
	return count, nil
}

// Stats implements store.MemoryStore.Stats.
func (s *PostgresMemoryStore) Stats(ctx context.Context, userID uuid.UUID) (*domain.MemoryStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT memory_type, importance_level, COUNT(*)
		FROM memories
		WHERE user_id = $1
		GROUP BY memory_type, importance_level`, userID)
	if err != nil {
		return nil, store.NewStoreError("memory", "stats", "failed to aggregate memories", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	stats := domain.NewMemoryStats()
	for rows.Next() {
		var memoryType string
		var importance, count int
		if err := rows.Scan(&memoryType, &importance, &count); err != nil {
			return nil, store.NewStoreError("memory", "stats", "failed to scan aggregate", err)
		}
		stats.Total += count
		stats.AddType(domain.MemoryType(memoryType), count)
		stats.AddImportance(importance, count)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("memory", "stats", "failed to read aggregates", MapError(err))
	}
	return stats, nil
}

// WithTx implements store.MemoryStore.WithTx.
func (s *PostgresMemoryStore) WithTx(tx *sql.Tx) store.MemoryStore {
	return &PostgresMemoryStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*domain.Memory, error) {
	var memory domain.Memory
	var memoryType string
	var tags []byte
	var mediaURL sql.NullString
	var lastAccessed sql.NullTime

	err := row.Scan(
		&memory.ID,
		&memory.UserID,
		&memory.Title,
		&memory.Content,
		&memoryType,
		&tags,
		&memory.ImportanceLevel,
		&memory.IsEncrypted,
		&mediaURL,
		&memory.CreatedAt,
		&memory.UpdatedAt,
		&lastAccessed,
	)
	if err != nil {
		return nil, err
	}

	memory.MemoryType = domain.MemoryType(memoryType)
	memory.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &memory.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if mediaURL.Valid {
		memory.MediaURL = &mediaURL.String
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		memory.LastAccessed = &t
	}
	return &memory, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}
