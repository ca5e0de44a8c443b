package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func testMemory(t *testing.T) *domain.Memory {
	t.Helper()
	memory, err := domain.NewMemory(uuid.New(), "Postgres vacuum", "Autovacuum reclaims dead tuples.",
		"learning", []string{"databases"}, nil, time.Now())
	require.NoError(t, err)
	return memory
}

func TestNewInsightGeneratorWithClient(t *testing.T) {
	_, err := NewInsightGeneratorWithClient(nil, "gemini-2.0-flash", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewInsightGeneratorWithClient(&fakeModels{}, "", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewInsightGenerator_RequiresKey(t *testing.T) {
	_, err := NewInsightGenerator(context.Background(), config.LLMConfig{ModelName: "gemini-2.0-flash"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerateInsights(t *testing.T) {
	models := &fakeModels{
		resp: textResponse(`{"summary":" Autovacuum cleans up dead rows. ","tags":["Postgres","maintenance","postgres"," "]}`),
	}
	gen, err := NewInsightGeneratorWithClient(models, "gemini-2.0-flash", nil)
	require.NoError(t, err)

	insights, err := gen.GenerateInsights(context.Background(), testMemory(t))
	require.NoError(t, err)

	assert.Equal(t, "Autovacuum cleans up dead rows.", insights.Summary)
	assert.Equal(t, []string{"postgres", "maintenance"}, insights.SuggestedTags)
	assert.Equal(t, "gemini-2.0-flash", models.model)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	assert.Contains(t, models.prompt, "Title: Postgres vacuum")
	assert.Contains(t, models.prompt, "Existing tags: databases")
	assert.Contains(t, models.prompt, "Autovacuum reclaims dead tuples.")
}

func TestGenerateInsights_CodeFence(t *testing.T) {
	models := &fakeModels{resp: textResponse("```json\n{\"summary\":\"ok\",\"tags\":[]}\n```")}
	gen, err := NewInsightGeneratorWithClient(models, "m", nil)
	require.NoError(t, err)

	insights, err := gen.GenerateInsights(context.Background(), testMemory(t))
	require.NoError(t, err)
	assert.Equal(t, "ok", insights.Summary)
	assert.Empty(t, insights.SuggestedTags)
}

func TestGenerateInsights_Failures(t *testing.T) {
	tests := []struct {
		name    string
		models  *fakeModels
		wantErr error
	}{
		{
			name:    "no candidates",
			models:  &fakeModels{resp: &genai.GenerateContentResponse{}},
			wantErr: ErrInvalidResponse,
		},
		{
			name: "blocked",
			models: &fakeModels{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			wantErr: ErrContentBlocked,
		},
		{
			name:    "not json",
			models:  &fakeModels{resp: textResponse("here are some thoughts")},
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "empty summary",
			models:  &fakeModels{resp: textResponse(`{"summary":"","tags":["a"]}`)},
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewInsightGeneratorWithClient(tt.models, "m", nil)
			require.NoError(t, err)

			_, err = gen.GenerateInsights(context.Background(), testMemory(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("transport error", func(t *testing.T) {
		apiErr := errors.New("quota exhausted")
		gen, err := NewInsightGeneratorWithClient(&fakeModels{err: apiErr}, "m", nil)
		require.NoError(t, err)

		_, err = gen.GenerateInsights(context.Background(), testMemory(t))
		assert.ErrorIs(t, err, apiErr)
	})

	t.Run("empty memory", func(t *testing.T) {
		gen, err := NewInsightGeneratorWithClient(&fakeModels{}, "m", nil)
		require.NoError(t, err)

		_, err = gen.GenerateInsights(context.Background(), &domain.Memory{})
		assert.ErrorIs(t, err, ErrEmptyMemory)
	})
}
