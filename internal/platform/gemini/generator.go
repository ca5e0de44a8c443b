package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"google.golang.org/genai"
)

const insightPrompt = `You help a person organize their personal notes.
Read the note below and reply with a JSON object with two fields:
"summary": one or two sentences capturing the key point,
"tags": up to five short lowercase topic tags.

Title: {{.Title}}
Type: {{.Type}}
{{- if .Tags}}
Existing tags: {{join .Tags ", "}}
{{- end}}

{{.Content}}`

var promptTemplate = template.Must(template.New("insight").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(insightPrompt))

// ContentGenerator is the subset of the genai client used here. It is
// satisfied by (*genai.Client).Models.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// InsightGenerator produces memory insights with Gemini.
type InsightGenerator struct {
	models ContentGenerator
	model  string
	logger *slog.Logger
}

// NewInsightGenerator creates a generator backed by the Gemini API.
func NewInsightGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*InsightGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return NewInsightGeneratorWithClient(client.Models, cfg.ModelName, logger)
}

// NewInsightGeneratorWithClient creates a generator over an existing client.
func NewInsightGeneratorWithClient(
	models ContentGenerator,
	model string,
	logger *slog.Logger,
) (*InsightGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &InsightGenerator{
		models: models,
		model:  model,
		logger: logger.With(slog.String("component", "gemini_insights")),
	}, nil
}

// GenerateInsights summarizes memory and suggests tags for it.
func (g *InsightGenerator) GenerateInsights(
	ctx context.Context,
	memory *domain.Memory,
) (*domain.MemoryInsights, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := createPrompt(memory)
	if err != nil {
		return nil, err
	}

	log.Debug("requesting memory insights",
		slog.String("memory_id", memory.ID.String()),
		slog.String("model", g.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	})
	if err != nil {
		log.Error("gemini request failed",
			slog.String("memory_id", memory.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	parsed, err := parseResponse(resp)
	if err != nil {
		log.Warn("unusable gemini response",
			slog.String("memory_id", memory.ID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	return &domain.MemoryInsights{
		Summary:       strings.TrimSpace(parsed.Summary),
		SuggestedTags: domain.NormalizeTags(parsed.Tags, domain.MaxSuggestedTags),
	}, nil
}

// createPrompt renders the prompt template for memory.
func createPrompt(memory *domain.Memory) (string, error) {
	if memory == nil || (strings.TrimSpace(memory.Title) == "" && strings.TrimSpace(memory.Content) == "") {
		return "", ErrEmptyMemory
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Title:   memory.Title,
		Type:    string(memory.MemoryType),
		Tags:    memory.Tags,
		Content: memory.Content,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// parseResponse extracts the JSON reply from the first candidate.
func parseResponse(resp *genai.GenerateContentResponse) (*ResponseSchema, error) {
	switch {
	case resp == nil:
		return nil, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return nil, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return nil, ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return nil, fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed ResponseSchema
	if err := json.Unmarshal([]byte(stripCodeFence(text.String())), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrInvalidResponse)
	}
	return &parsed, nil
}

// stripCodeFence removes a Markdown code fence the model sometimes wraps
// around JSON despite the requested MIME type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
