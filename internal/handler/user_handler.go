package handler

import (
	"quizforge/internal/dto"
	"quizforge/internal/middleware"
	"quizforge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the current user's profile and attempt history.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)

	profile, err := h.users.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetMyAttempts godoc
// @Summary List the current user's quiz attempts
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.UserAttemptsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me/attempts [get]
func (h *UserHandler) GetMyAttempts(c *fiber.Ctx) error {
	userID, _ := middleware.UserIDFromContext(c)

	page := dto.Pagination{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}

	attempts, err := h.users.GetAttempts(c.Context(), userID, page)
	if err != nil {
		return err
	}
	return c.JSON(attempts)
}
