package handler

import (
	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/middleware"
	"quizforge/internal/service"
	"quizforge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz CRUD, the take view, and attempt submission.
type QuizHandler struct {
	quizzes   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance.
func NewQuizHandler(quizzes service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, validator: validator}
}

// CreateQuiz godoc
// @Summary Create a quiz manually
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz content"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)

	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateCreateQuizRequest(req); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.CreateQuiz(c.Context(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetQuiz godoc
// @Summary Get a quiz with answers (owner only)
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)
	quizID := c.Params("id")

	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.GetQuiz(c.Context(), quizID, userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListQuizzes godoc
// @Summary List the current user's quizzes
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.QuizListResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)

	resp, err := h.quizzes.ListQuizzes(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateQuiz godoc
// @Summary Replace a quiz's content
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "Replacement content"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)
	quizID := c.Params("id")

	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateUpdateQuizRequest(quizID, req); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.UpdateQuiz(c.Context(), quizID, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quiz
// @Param id path string true "Quiz ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)
	quizID := c.Params("id")

	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	if err := h.quizzes.DeleteQuiz(c.Context(), quizID, userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TakeQuiz godoc
// @Summary Get the answer-stripped view of a quiz for taking
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.TakeQuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/take [get]
func (h *QuizHandler) TakeQuiz(c *fiber.Ctx) error {
	quizID := c.Params("id")

	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.GetTakeQuiz(c.Context(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAttempt godoc
// @Summary Submit answers for a quiz and get the score
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.SubmitAttemptRequest true "Selected answers"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)
	quizID := c.Params("id")

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body is not valid JSON")
	}
	if errs := h.validator.ValidateSubmitAttemptRequest(quizID, req); len(errs) > 0 {
		return errs
	}

	resp, err := h.quizzes.SubmitAttempt(c.Context(), quizID, userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
