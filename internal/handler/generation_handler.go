package handler

import (
	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/logger"
	"quizforge/internal/middleware"
	"quizforge/internal/service"
	"quizforge/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GenerationHandler handles AI-backed quiz generation requests.
type GenerationHandler struct {
	generation service.GenerationService
	quizzes    service.QuizService
	validator  *validation.Validator
}

// NewGenerationHandler creates a new GenerationHandler instance.
func NewGenerationHandler(generation service.GenerationService, quizzes service.QuizService, validator *validation.Validator) *GenerationHandler {
	return &GenerationHandler{
		generation: generation,
		quizzes:    quizzes,
		validator:  validator,
	}
}

// GenerateQuiz godoc
// @Summary Generate and persist a quiz from a topic prompt
// @Description Runs the AI generation pipeline and stores the result for the current user.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 201 {object} dto.TakeQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes/generate [post]
func (h *GenerationHandler) GenerateQuiz(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)

	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateGenerateQuizRequest(req); len(errs) > 0 {
		return errs
	}

	genReq, err := generationRequestFromDTO(req)
	if err != nil {
		return err
	}

	generated, err := h.generation.GenerateQuiz(c.Context(), genReq)
	if err != nil {
		return err
	}

	stored, err := h.quizzes.CreateFromGenerated(c.Context(), userID, generated)
	if err != nil {
		return err
	}

	logger.Get().Info("Quiz generated and persisted",
		zap.String("quizID", stored.ID),
		zap.String("userID", userID),
	)
	return c.Status(fiber.StatusCreated).JSON(stripAnswers(stored))
}

// CreatePrototype godoc
// @Summary Generate a quiz prototype without persisting it
// @Description Runs the AI generation pipeline and returns the full result, answers included, for the composer UI.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.PrototypeQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /manual-quizzes/create-prototype [post]
func (h *GenerationHandler) CreatePrototype(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateGenerateQuizRequest(req); len(errs) > 0 {
		return errs
	}

	genReq, err := generationRequestFromDTO(req)
	if err != nil {
		return err
	}

	generated, err := h.generation.GenerateQuiz(c.Context(), genReq)
	if err != nil {
		return err
	}

	return c.JSON(prototypeFromGenerated(generated))
}

// SurpriseTopic godoc
// @Summary Get a random quiz topic
// @Description Returns a random topic and a distinct fallback.
// @Tags generation
// @Produce json
// @Success 200 {object} dto.SurpriseTopicResponse
// @Router /topics/surprise [get]
func (h *GenerationHandler) SurpriseTopic(c *fiber.Ctx) error {
	topic, fallback := h.generation.SurpriseTopic()
	return c.JSON(dto.SurpriseTopicResponse{Topic: topic, Fallback: fallback})
}

// GenerateMoreQuestions godoc
// @Summary Append AI-generated questions to an existing quiz
// @Tags generation
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.GenerateMoreRequest true "Generation request"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/questions/generate-more [post]
func (h *GenerationHandler) GenerateMoreQuestions(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)
	quizID := c.Params("id")

	var req dto.GenerateMoreRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateGenerateMoreRequest(quizID, req); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.AddGeneratedQuestions(c.Context(), quizID, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// EnhanceQuiz godoc
// @Summary Rewrite a quiz's wording via the AI pipeline
// @Tags generation
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/enhance [post]
func (h *GenerationHandler) EnhanceQuiz(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)
	quizID := c.Params("id")

	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.EnhanceQuiz(c.Context(), quizID, userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CheckSafety godoc
// @Summary Check whether free text is acceptable quiz content
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.SafetyCheckRequest true "Content to check"
// @Success 200 {object} dto.SafetyCheckResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /safety/check [post]
func (h *GenerationHandler) CheckSafety(c *fiber.Ctx) error {
	var req dto.SafetyCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateSafetyCheckRequest(req); len(errs) > 0 {
		return errs
	}

	verdict, err := h.generation.CheckSafety(c.Context(), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(verdict)
}

func generationRequestFromDTO(req dto.GenerateQuizRequest) (domain.GenerationRequest, error) {
	difficulty, ok := domain.ParseDifficulty(req.Difficulty)
	if !ok {
		return domain.GenerationRequest{}, domain.NewInvalidInputError("invalid difficulty: " + req.Difficulty)
	}
	return domain.GenerationRequest{
		Prompt:        req.Prompt,
		Difficulty:    difficulty,
		QuestionCount: req.QuestionCount,
		OptionsCount:  req.OptionsCount,
		Title:         req.Title,
	}, nil
}

// stripAnswers converts an owner view into a taker view, dropping answer
// flags.
func stripAnswers(resp *dto.QuizResponse) *dto.TakeQuizResponse {
	take := &dto.TakeQuizResponse{
		ID:          resp.ID,
		Title:       resp.Title,
		Description: resp.Description,
		Difficulty:  resp.Difficulty,
		Questions:   make([]dto.TakeQuestion, 0, len(resp.Questions)),
	}
	for _, question := range resp.Questions {
		takeQuestion := dto.TakeQuestion{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			OrderIndex:   question.OrderIndex,
			Options:      make([]dto.TakeOption, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			takeQuestion.Options = append(takeQuestion.Options, dto.TakeOption{
				ID:         opt.ID,
				OptionText: opt.OptionText,
				OrderIndex: opt.OrderIndex,
			})
		}
		take.Questions = append(take.Questions, takeQuestion)
	}
	return take
}

func prototypeFromGenerated(gen *domain.GeneratedQuiz) *dto.PrototypeQuizResponse {
	resp := &dto.PrototypeQuizResponse{
		Title:       gen.Title,
		Description: gen.Description,
		Difficulty:  string(gen.Difficulty),
		Questions:   make([]dto.QuestionPayload, 0, len(gen.Questions)),
	}
	for _, question := range gen.Questions {
		payload := dto.QuestionPayload{
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			OrderIndex:   question.OrderIndex,
			Options:      make([]dto.OptionPayload, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			payload.Options = append(payload.Options, dto.OptionPayload{
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: opt.OrderIndex,
			})
		}
		resp.Questions = append(resp.Questions, payload)
	}
	return resp
}
