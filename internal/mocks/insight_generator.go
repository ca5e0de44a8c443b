package mocks

import (
	"context"

	"github.com/phrazzld/recall-api/internal/domain"
)

// MockInsightGenerator returns canned insights unless GenerateFn is set.
type MockInsightGenerator struct {
	GenerateFn func(ctx context.Context, memory *domain.Memory) (*domain.MemoryInsights, error)

	// Calls records the memories passed to GenerateInsights.
	Calls []*domain.Memory
}

// GenerateInsights satisfies service.InsightGenerator.
func (m *MockInsightGenerator) GenerateInsights(ctx context.Context, memory *domain.Memory) (*domain.MemoryInsights, error) {
	m.Calls = append(m.Calls, memory)
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, memory)
	}
	return &domain.MemoryInsights{
		Summary:       "Summary of " + memory.Title,
		SuggestedTags: []string{"insight"},
	}, nil
}
