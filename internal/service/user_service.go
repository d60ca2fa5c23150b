package service

import (
	"context"
	"fmt"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/repository"
)

const (
	defaultAttemptPageSize = 20
	maxAttemptPageSize     = 100
)

// UserService exposes profile and attempt-history reads for the current user.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	GetAttempts(ctx context.Context, userID string, page dto.Pagination) (*dto.UserAttemptsResponse, error)
}

type userServiceImpl struct {
	userRepo    repository.UserRepository
	attemptRepo repository.QuizAttemptRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, attemptRepo repository.QuizAttemptRepository) UserService {
	return &userServiceImpl{userRepo: userRepo, attemptRepo: attemptRepo}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("User %s not found", userID))
	}

	return &dto.UserProfileResponse{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		ProfilePictureURL: user.ProfilePictureURL,
		CreatedAt:         user.CreatedAt,
	}, nil
}

// GetAttempts returns a page of the user's attempts, newest first, and the
// total count for pagination.
func (s *userServiceImpl) GetAttempts(ctx context.Context, userID string, page dto.Pagination) (*dto.UserAttemptsResponse, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = defaultAttemptPageSize
	}
	if limit > maxAttemptPageSize {
		limit = maxAttemptPageSize
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	attempts, err := s.attemptRepo.ListAttemptsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.attemptRepo.CountAttemptsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.UserAttemptsResponse{
		Attempts: make([]dto.AttemptResponse, 0, len(attempts)),
		Total:    total,
	}
	for _, attempt := range attempts {
		resp.Attempts = append(resp.Attempts, dto.AttemptResponse{
			ID:            attempt.ID,
			QuizID:        attempt.QuizID,
			CorrectCount:  attempt.CorrectCount,
			QuestionCount: attempt.QuestionCount,
			Score:         attempt.Score,
			AttemptedAt:   attempt.AttemptedAt,
		})
	}
	return resp, nil
}
