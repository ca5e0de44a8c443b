package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// InsightGenerator produces AI insights for a memory.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, memory *domain.Memory) (*domain.MemoryInsights, error)
}

// InsightService gates AI insights behind the premium tier.
type InsightService interface {
	Generate(ctx context.Context, userID, memoryID uuid.UUID) (*domain.MemoryInsights, error)
}

type insightServiceImpl struct {
	users     store.UserStore
	memories  store.MemoryStore
	generator InsightGenerator
	logger    *slog.Logger
}

var _ InsightService = (*insightServiceImpl)(nil)

// NewInsightService creates an InsightService. A nil generator leaves the
// service in place but every call fails with ErrInsightsDisabled.
func NewInsightService(
	users store.UserStore,
	memories store.MemoryStore,
	generator InsightGenerator,
	logger *slog.Logger,
) (InsightService, error) {
	if users == nil || memories == nil {
		return nil, &ServiceError{
			Service:   "insight",
			Operation: "create_service",
			Message:   "user store and memory store are required",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &insightServiceImpl{
		users:     users,
		memories:  memories,
		generator: generator,
		logger:    logger.With(slog.String("component", "insight_service")),
	}, nil
}

// Generate implements InsightService.
func (s *insightServiceImpl) Generate(
	ctx context.Context,
	userID, memoryID uuid.UUID,
) (*domain.MemoryInsights, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("insight", "generate", "failed to load user", err)
	}
	memory, err := s.memories.GetByID(ctx, userID, memoryID)
	if err != nil {
		return nil, NewServiceError("insight", "generate", "failed to load memory", err)
	}

	if !domain.FeaturesFor(user.SubscriptionType).AIFeatures {
		return nil, ErrFeatureUnavailable
	}
	if s.generator == nil {
		log.Warn("insights requested but no generator is configured")
		return nil, ErrInsightsDisabled
	}

	insights, err := s.generator.GenerateInsights(ctx, memory)
	if err != nil {
		return nil, NewServiceError("insight", "generate", "failed to generate insights", err)
	}

	log.Info("memory insights generated",
		slog.String("memory_id", memoryID.String()),
		slog.Int("tag_count", len(insights.SuggestedTags)))
	return insights, nil
}
