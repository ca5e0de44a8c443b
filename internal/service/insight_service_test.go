package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/mocks"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightService_Generate(t *testing.T) {
	premium := newTestUser(t, domain.SubscriptionPremium)
	free := newTestUser(t, domain.SubscriptionFree)
	premiumMemory := newTestMemory(t, premium.ID, "Trip notes", time.Hour)
	freeMemory := newTestMemory(t, free.ID, "Plain", time.Hour)

	users := mocks.NewMockUserStore(premium, free)
	memories := mocks.NewMockMemoryStore(premiumMemory, freeMemory)

	t.Run("premium user", func(t *testing.T) {
		generator := &mocks.MockInsightGenerator{}
		svc, err := NewInsightService(users, memories, generator, nil)
		require.NoError(t, err)

		insights, err := svc.Generate(context.Background(), premium.ID, premiumMemory.ID)
		require.NoError(t, err)
		assert.Equal(t, "Summary of Trip notes", insights.Summary)
		require.Len(t, generator.Calls, 1)
		assert.Equal(t, premiumMemory.ID, generator.Calls[0].ID)
	})

	t.Run("free user", func(t *testing.T) {
		generator := &mocks.MockInsightGenerator{}
		svc, err := NewInsightService(users, memories, generator, nil)
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), free.ID, freeMemory.ID)
		assert.ErrorIs(t, err, ErrFeatureUnavailable)
		assert.Empty(t, generator.Calls)
	})

	t.Run("foreign memory", func(t *testing.T) {
		svc, err := NewInsightService(users, memories, &mocks.MockInsightGenerator{}, nil)
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), premium.ID, freeMemory.ID)
		assert.ErrorIs(t, err, store.ErrMemoryNotFound)
	})

	t.Run("no generator configured", func(t *testing.T) {
		svc, err := NewInsightService(users, memories, nil, nil)
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), premium.ID, premiumMemory.ID)
		assert.ErrorIs(t, err, ErrInsightsDisabled)
	})

	t.Run("generator failure", func(t *testing.T) {
		generator := &mocks.MockInsightGenerator{
			GenerateFn: func(ctx context.Context, memory *domain.Memory) (*domain.MemoryInsights, error) {
				return nil, errBoom
			},
		}
		svc, err := NewInsightService(users, memories, generator, nil)
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), premium.ID, premiumMemory.ID)
		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, err := NewInsightService(users, memories, nil, nil)
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), uuid.New(), premiumMemory.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
