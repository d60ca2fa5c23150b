package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"sync"

	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/logger"
	"quizforge/internal/quizgen"

	"go.uber.org/zap"
)

// GenerationService turns a topic prompt into a canonical, validated quiz.
// It owns the full pipeline: prompt construction, the model call, fence
// extraction, JSON parsing, and normalization. Nothing the model produced
// leaves this service unnormalized.
type GenerationService interface {
	GenerateQuiz(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedQuiz, error)
	GenerateMoreQuestions(ctx context.Context, req domain.GenerationRequest, existingQuestions []string) ([]domain.GeneratedQuestion, error)
	EnhanceQuiz(ctx context.Context, req domain.GenerationRequest, quiz *domain.GeneratedQuiz) (*domain.GeneratedQuiz, error)
	SurpriseTopic() (topic string, fallback string)
	CheckSafety(ctx context.Context, content string) (*dto.SafetyCheckResponse, error)
}

type generationServiceImpl struct {
	generator  domain.TextGenerator
	normalizer *quizgen.Normalizer
	genCfg     config.GenerationConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerationService wires the pipeline around a text generator.
// The random source feeds surprise-topic picks; inject a seeded one in tests.
func NewGenerationService(generator domain.TextGenerator, genCfg config.GenerationConfig, rng *rand.Rand) GenerationService {
	return &generationServiceImpl{
		generator:  generator,
		normalizer: quizgen.NewNormalizer(genCfg.TitleWordLimit, logger.Get()),
		genCfg:     genCfg,
		rng:        rng,
	}
}

// GenerateQuiz runs the full pipeline for a new quiz.
func (s *generationServiceImpl) GenerateQuiz(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedQuiz, error) {
	prompt := quizgen.BuildQuizPrompt(req, s.genCfg.TitleWordLimit)
	return s.generateNormalized(ctx, prompt, req)
}

// GenerateMoreQuestions asks the model for additional questions for an
// existing quiz, carrying the current question texts so the model avoids
// duplicates. Only the questions of the normalized reply are returned.
func (s *generationServiceImpl) GenerateMoreQuestions(ctx context.Context, req domain.GenerationRequest, existingQuestions []string) ([]domain.GeneratedQuestion, error) {
	prompt := quizgen.BuildMoreQuestionsPrompt(req, s.genCfg.TitleWordLimit, existingQuestions)
	quiz, err := s.generateNormalized(ctx, prompt, req)
	if err != nil {
		return nil, err
	}
	return quiz.Questions, nil
}

// EnhanceQuiz rewrites an existing quiz for clarity. The current quiz is
// serialized into the prompt, answers included, and the reply goes through
// the same normalization as a fresh generation.
func (s *generationServiceImpl) EnhanceQuiz(ctx context.Context, req domain.GenerationRequest, quiz *domain.GeneratedQuiz) (*domain.GeneratedQuiz, error) {
	quizJSON, err := json.Marshal(enhanceInputFromQuiz(quiz))
	if err != nil {
		return nil, domain.NewInternalError("failed to serialize quiz for enhancement", err)
	}

	prompt := quizgen.BuildEnhancePrompt(req, s.genCfg.TitleWordLimit, string(quizJSON))
	enhanced, err := s.generateNormalized(ctx, prompt, req)
	if err != nil {
		return nil, err
	}

	if len(enhanced.Questions) != len(quiz.Questions) {
		logger.Get().Warn("Enhancement changed the question count, keeping the model's version",
			zap.Int("before", len(quiz.Questions)),
			zap.Int("after", len(enhanced.Questions)),
		)
	}
	return enhanced, nil
}

// SurpriseTopic picks a random topic and a distinct fallback.
func (s *generationServiceImpl) SurpriseTopic() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return quizgen.SurpriseTopics(s.rng)
}

// CheckSafety asks the model whether free text is acceptable quiz content.
// An unreadable verdict fails closed: the content is reported unsafe rather
// than waved through.
func (s *generationServiceImpl) CheckSafety(ctx context.Context, content string) (*dto.SafetyCheckResponse, error) {
	raw, err := s.generator.Generate(ctx, quizgen.BuildSafetyPrompt(content))
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	var verdict struct {
		Safe   bool   `json:"safe"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(quizgen.ExtractJSON(raw)), &verdict); err != nil {
		logger.Get().Warn("Safety verdict was not valid JSON, treating content as unsafe",
			zap.Int("raw_length", len(raw)),
			zap.Error(err),
		)
		return &dto.SafetyCheckResponse{Safe: false, Reason: "Content could not be evaluated"}, nil
	}

	return &dto.SafetyCheckResponse{Safe: verdict.Safe, Reason: strings.TrimSpace(verdict.Reason)}, nil
}

// generateNormalized is the shared tail of every quiz-shaped pipeline run:
// model call, fence extraction, parse, normalize, error classification.
func (s *generationServiceImpl) generateNormalized(ctx context.Context, prompt string, req domain.GenerationRequest) (*domain.GeneratedQuiz, error) {
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	tree, err := quizgen.ParseTree(quizgen.ExtractJSON(raw))
	if err != nil {
		var parseErr *quizgen.ResponseParseError
		if errors.As(err, &parseErr) {
			return nil, domain.NewResponseParseError(err, parseErr.RawLength)
		}
		return nil, domain.NewResponseParseError(err, len(raw))
	}

	quiz, err := s.normalizer.Normalize(tree, req)
	if err != nil {
		return nil, domain.NewResponseInvalidError(err)
	}
	return quiz, nil
}

// enhanceInputFromQuiz shapes a quiz the way the response contract describes
// it, so the model sees its own output format as input.
func enhanceInputFromQuiz(quiz *domain.GeneratedQuiz) map[string]interface{} {
	questions := make([]map[string]interface{}, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]map[string]interface{}, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, map[string]interface{}{
				"option_text": o.OptionText,
				"is_correct":  o.IsCorrect,
			})
		}
		questions = append(questions, map[string]interface{}{
			"question_text": q.QuestionText,
			"question_type": q.QuestionType,
			"options":       options,
		})
	}
	return map[string]interface{}{
		"title":       quiz.Title,
		"description": quiz.Description,
		"questions":   questions,
	}
}
