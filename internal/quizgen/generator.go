package quizgen

import (
	"context"

	"quizforge/internal/config"
	"quizforge/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// LLMGenerator adapts a langchaingo model to the domain.TextGenerator port.
// One prompt in, free text out; no retries, no response shaping. Everything
// defensive happens downstream in the normalizer.
type LLMGenerator struct {
	llm         llms.Model
	temperature float64
	logger      *zap.Logger
}

// NewLLMGenerator wraps an already-constructed langchaingo model.
func NewLLMGenerator(llm llms.Model, temperature float64, logger *zap.Logger) *LLMGenerator {
	return &LLMGenerator{
		llm:         llm,
		temperature: temperature,
		logger:      logger,
	}
}

// NewGeminiGenerator constructs a generator backed by the Gemini API.
// A missing API key fails here, before any network call, so a
// misconfigured deployment is diagnosed immediately.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*LLMGenerator, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewGenerationConfigError("Gemini API key is not configured")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	logger.Info("Initialized Gemini quiz generator", zap.String("model", cfg.Model))
	return NewLLMGenerator(llm, cfg.Temperature, logger), nil
}

// Generate sends one prompt to the model and returns its raw text reply.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("LLM call failed", zap.Error(err))
		return "", domain.NewLLMServiceError(err)
	}
	return response, nil
}

var _ domain.TextGenerator = (*LLMGenerator)(nil)
