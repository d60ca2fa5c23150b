package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizforge/internal/cache"
	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/logger"
	"quizforge/internal/repository"

	"go.uber.org/zap"
)

// QuizService owns persisted quizzes: creation (manual or from a generated
// prototype), owner CRUD, the answer-stripped take view, and attempt scoring.
type QuizService interface {
	CreateFromGenerated(ctx context.Context, ownerID string, gen *domain.GeneratedQuiz) (*dto.QuizResponse, error)
	CreateQuiz(ctx context.Context, ownerID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error)
	GetQuiz(ctx context.Context, quizID string, requesterID string) (*dto.QuizResponse, error)
	ListQuizzes(ctx context.Context, ownerID string) (*dto.QuizListResponse, error)
	UpdateQuiz(ctx context.Context, quizID string, ownerID string, req dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, quizID string, ownerID string) error
	GetTakeQuiz(ctx context.Context, quizID string) (*dto.TakeQuizResponse, error)
	SubmitAttempt(ctx context.Context, quizID string, userID string, req dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	AddGeneratedQuestions(ctx context.Context, quizID string, ownerID string, req dto.GenerateMoreRequest) (*dto.QuizResponse, error)
	EnhanceQuiz(ctx context.Context, quizID string, ownerID string) (*dto.QuizResponse, error)
}

type quizServiceImpl struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.QuizAttemptRepository
	txManager   domain.TransactionManager
	cache       domain.Cache
	generation  GenerationService
	genCfg      config.GenerationConfig
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.QuizAttemptRepository,
	txManager domain.TransactionManager,
	cacheAdapter domain.Cache,
	generation GenerationService,
	genCfg config.GenerationConfig,
) QuizService {
	return &quizServiceImpl{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		txManager:   txManager,
		cache:       cacheAdapter,
		generation:  generation,
		genCfg:      genCfg,
	}
}

// CreateFromGenerated persists a normalized generated quiz for its owner.
// The whole question/option cascade commits atomically; a failure anywhere
// leaves no partial rows behind.
func (s *quizServiceImpl) CreateFromGenerated(ctx context.Context, ownerID string, gen *domain.GeneratedQuiz) (*dto.QuizResponse, error) {
	quiz := quizFromGenerated(ownerID, gen)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.quizRepo.CreateQuiz(txCtx, quiz)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist generated quiz: %w", err)
	}

	logger.Get().Info("Generated quiz persisted",
		zap.String("quizID", quiz.ID),
		zap.String("ownerID", ownerID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return quizToResponse(quiz), nil
}

// CreateQuiz persists a manually composed quiz.
func (s *quizServiceImpl) CreateQuiz(ctx context.Context, ownerID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	quiz, err := quizFromCreateRequest(ownerID, req.Title, req.Description, req.Difficulty, req.Questions)
	if err != nil {
		return nil, err
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.quizRepo.CreateQuiz(txCtx, quiz)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist quiz: %w", err)
	}
	return quizToResponse(quiz), nil
}

// GetQuiz returns the full owner view, answer flags included.
func (s *quizServiceImpl) GetQuiz(ctx context.Context, quizID string, requesterID string) (*dto.QuizResponse, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, requesterID)
	if err != nil {
		return nil, err
	}
	return quizToResponse(quiz), nil
}

func (s *quizServiceImpl) ListQuizzes(ctx context.Context, ownerID string) (*dto.QuizListResponse, error) {
	quizzes, err := s.quizRepo.ListQuizzesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizSummary, 0, len(quizzes))}
	for _, quiz := range quizzes {
		resp.Quizzes = append(resp.Quizzes, dto.QuizSummary{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Description:   quiz.Description,
			Difficulty:    string(quiz.Difficulty),
			QuestionCount: len(quiz.Questions),
			CreatedAt:     quiz.CreatedAt,
		})
	}
	return resp, nil
}

// UpdateQuiz replaces the quiz content wholesale and drops the cached take
// view so takers never see stale questions.
func (s *quizServiceImpl) UpdateQuiz(ctx context.Context, quizID string, ownerID string, req dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	if _, err := s.ownedQuiz(ctx, quizID, ownerID); err != nil {
		return nil, err
	}

	quiz, err := quizFromCreateRequest(ownerID, req.Title, req.Description, req.Difficulty, req.Questions)
	if err != nil {
		return nil, err
	}
	quiz.ID = quizID
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.quizRepo.ReplaceQuizContent(txCtx, quiz)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTakeCache(ctx, quizID)
	return quizToResponse(quiz), nil
}

func (s *quizServiceImpl) DeleteQuiz(ctx context.Context, quizID string, ownerID string) error {
	if _, err := s.ownedQuiz(ctx, quizID, ownerID); err != nil {
		return err
	}
	if err := s.quizRepo.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.invalidateTakeCache(ctx, quizID)
	return nil
}

// GetTakeQuiz serves the answer-stripped view for quiz takers, cached in
// Redis. The correct-answer flags are stripped before caching, so a cache
// leak can never expose answers.
func (s *quizServiceImpl) GetTakeQuiz(ctx context.Context, quizID string) (*dto.TakeQuizResponse, error) {
	key := takeCacheKey(quizID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var resp dto.TakeQuizResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return &resp, nil
		}
		logger.Get().Warn("Corrupt take-view cache entry, refetching", zap.String("quizID", quizID))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("Take-view cache read failed", zap.String("quizID", quizID), zap.Error(err))
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	resp := quizToTakeResponse(quiz)
	if payload, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.genCfg.TakeCacheTTL); err != nil {
			logger.Get().Warn("Take-view cache write failed", zap.String("quizID", quizID), zap.Error(err))
		}
	}
	return resp, nil
}

// SubmitAttempt scores a submission against the quiz's correct options and
// records the attempt. Unanswered questions count as incorrect.
func (s *quizServiceImpl) SubmitAttempt(ctx context.Context, quizID string, userID string, req dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	correctByQuestion := make(map[string]string, len(quiz.Questions))
	optionsByQuestion := make(map[string]map[string]bool, len(quiz.Questions))
	for _, question := range quiz.Questions {
		known := make(map[string]bool, len(question.Options))
		for _, opt := range question.Options {
			known[opt.ID] = true
			if opt.IsCorrect {
				correctByQuestion[question.ID] = opt.ID
			}
		}
		optionsByQuestion[question.ID] = known
	}

	selected := make(map[string]string, len(req.Answers))
	for _, answer := range req.Answers {
		known, ok := optionsByQuestion[answer.QuestionID]
		if !ok {
			return nil, domain.NewInvalidInputError("answer references an unknown question: " + answer.QuestionID)
		}
		if !known[answer.OptionID] {
			return nil, domain.NewInvalidInputError("answer references an unknown option: " + answer.OptionID)
		}
		if _, dup := selected[answer.QuestionID]; dup {
			return nil, domain.NewInvalidInputError("duplicate answer for question: " + answer.QuestionID)
		}
		selected[answer.QuestionID] = answer.OptionID
	}

	correctCount := 0
	for questionID, optionID := range selected {
		if correctByQuestion[questionID] == optionID {
			correctCount++
		}
	}

	attempt := &domain.QuizAttempt{
		UserID:        userID,
		QuizID:        quizID,
		CorrectCount:  correctCount,
		QuestionCount: len(quiz.Questions),
		Score:         float64(correctCount) / float64(len(quiz.Questions)) * 100,
		SelectedByQ:   selected,
	}
	if err := s.attemptRepo.SaveAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	return &dto.AttemptResponse{
		ID:            attempt.ID,
		QuizID:        attempt.QuizID,
		CorrectCount:  attempt.CorrectCount,
		QuestionCount: attempt.QuestionCount,
		Score:         attempt.Score,
		AttemptedAt:   attempt.AttemptedAt,
	}, nil
}

// AddGeneratedQuestions appends AI-generated questions to an existing quiz.
// Existing question texts ride along in the prompt so the model avoids
// repeating them.
func (s *quizServiceImpl) AddGeneratedQuestions(ctx context.Context, quizID string, ownerID string, req dto.GenerateMoreRequest) (*dto.QuizResponse, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, ownerID)
	if err != nil {
		return nil, err
	}

	existing := make([]string, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		existing = append(existing, question.QuestionText)
	}

	genReq := domain.GenerationRequest{
		Prompt:        quiz.Title + "\n" + quiz.Description,
		Difficulty:    quiz.Difficulty,
		QuestionCount: req.QuestionCount,
		OptionsCount:  req.OptionsCount,
		Title:         quiz.Title,
	}
	generated, err := s.generation.GenerateMoreQuestions(ctx, genReq, existing)
	if err != nil {
		return nil, err
	}

	base := len(quiz.Questions)
	for i, gq := range generated {
		quiz.Questions = append(quiz.Questions, generatedQuestionToDomain(gq, base+i))
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.quizRepo.ReplaceQuizContent(txCtx, quiz)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTakeCache(ctx, quizID)
	return quizToResponse(quiz), nil
}

// EnhanceQuiz rewrites a quiz's wording via the generation pipeline and
// replaces its content with the normalized result.
func (s *quizServiceImpl) EnhanceQuiz(ctx context.Context, quizID string, ownerID string) (*dto.QuizResponse, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, ownerID)
	if err != nil {
		return nil, err
	}

	genReq := domain.GenerationRequest{
		Prompt:        quiz.Title + "\n" + quiz.Description,
		Difficulty:    quiz.Difficulty,
		QuestionCount: len(quiz.Questions),
		OptionsCount:  maxOptionCount(quiz),
	}
	enhanced, err := s.generation.EnhanceQuiz(ctx, genReq, generatedFromQuiz(quiz))
	if err != nil {
		return nil, err
	}

	replacement := quizFromGenerated(ownerID, enhanced)
	replacement.ID = quizID
	if err := replacement.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.quizRepo.ReplaceQuizContent(txCtx, replacement)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTakeCache(ctx, quizID)
	return quizToResponse(replacement), nil
}

// ownedQuiz loads a quiz and checks ownership. Not-found and not-owned are
// distinct errors: 404 must not leak whether someone else's quiz exists, so
// the handler layer decides how much to reveal.
func (s *quizServiceImpl) ownedQuiz(ctx context.Context, quizID string, ownerID string) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.OwnerID != ownerID {
		return nil, domain.NewForbiddenError("You do not own this quiz")
	}
	return quiz, nil
}

func takeCacheKey(quizID string) string {
	return cache.GenerateCacheKey("quiz", "take", quizID)
}

func (s *quizServiceImpl) invalidateTakeCache(ctx context.Context, quizID string) {
	if err := s.cache.Delete(ctx, takeCacheKey(quizID)); err != nil {
		logger.Get().Warn("Failed to invalidate take-view cache",
			zap.String("quizID", quizID), zap.Error(err))
	}
}

func maxOptionCount(quiz *domain.Quiz) int {
	max := 0
	for _, q := range quiz.Questions {
		if len(q.Options) > max {
			max = len(q.Options)
		}
	}
	return max
}

func quizFromGenerated(ownerID string, gen *domain.GeneratedQuiz) *domain.Quiz {
	quiz := &domain.Quiz{
		OwnerID:     ownerID,
		Title:       gen.Title,
		Description: gen.Description,
		Difficulty:  gen.Difficulty,
		Questions:   make([]*domain.Question, 0, len(gen.Questions)),
	}
	for i, gq := range gen.Questions {
		quiz.Questions = append(quiz.Questions, generatedQuestionToDomain(gq, i))
	}
	return quiz
}

func generatedQuestionToDomain(gq domain.GeneratedQuestion, orderIndex int) *domain.Question {
	question := &domain.Question{
		QuestionText: gq.QuestionText,
		QuestionType: gq.QuestionType,
		OrderIndex:   orderIndex,
		Options:      make([]*domain.Option, 0, len(gq.Options)),
	}
	for _, opt := range gq.Options {
		question.Options = append(question.Options, &domain.Option{
			OptionText: opt.OptionText,
			IsCorrect:  opt.IsCorrect,
			OrderIndex: opt.OrderIndex,
		})
	}
	return question
}

func generatedFromQuiz(quiz *domain.Quiz) *domain.GeneratedQuiz {
	gen := &domain.GeneratedQuiz{
		Title:       quiz.Title,
		Description: quiz.Description,
		Difficulty:  quiz.Difficulty,
		Questions:   make([]domain.GeneratedQuestion, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		gq := domain.GeneratedQuestion{
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			OrderIndex:   question.OrderIndex,
			Options:      make([]domain.GeneratedOption, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			gq.Options = append(gq.Options, domain.GeneratedOption{
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: opt.OrderIndex,
			})
		}
		gen.Questions = append(gen.Questions, gq)
	}
	return gen
}

func quizFromCreateRequest(ownerID, title, description, difficulty string, questions []dto.CreateQuestionRequest) (*domain.Quiz, error) {
	parsedDifficulty, ok := domain.ParseDifficulty(difficulty)
	if !ok {
		return nil, domain.NewInvalidInputError("invalid difficulty: " + difficulty)
	}

	quiz := &domain.Quiz{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Difficulty:  parsedDifficulty,
		Questions:   make([]*domain.Question, 0, len(questions)),
	}
	for i, q := range questions {
		questionType := q.QuestionType
		if questionType == "" {
			questionType = domain.QuestionTypeMultipleChoice
		}
		question := &domain.Question{
			QuestionText: q.QuestionText,
			QuestionType: questionType,
			OrderIndex:   i,
			Options:      make([]*domain.Option, 0, len(q.Options)),
		}
		for j, opt := range q.Options {
			question.Options = append(question.Options, &domain.Option{
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: j,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

func quizToResponse(quiz *domain.Quiz) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Difficulty:  string(quiz.Difficulty),
		Questions:   make([]dto.QuestionPayload, 0, len(quiz.Questions)),
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
	for _, question := range quiz.Questions {
		payload := dto.QuestionPayload{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			OrderIndex:   question.OrderIndex,
			Options:      make([]dto.OptionPayload, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			payload.Options = append(payload.Options, dto.OptionPayload{
				ID:         opt.ID,
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: opt.OrderIndex,
			})
		}
		resp.Questions = append(resp.Questions, payload)
	}
	return resp
}

func quizToTakeResponse(quiz *domain.Quiz) *dto.TakeQuizResponse {
	resp := &dto.TakeQuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Difficulty:  string(quiz.Difficulty),
		Questions:   make([]dto.TakeQuestion, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
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
		resp.Questions = append(resp.Questions, takeQuestion)
	}
	return resp
}
