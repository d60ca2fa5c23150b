package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quizServiceMocks struct {
	quizRepo    *MockQuizRepository
	attemptRepo *MockQuizAttemptRepository
	txManager   *MockTransactionManager
	cache       *MockCache
	generator   *MockTextGenerator
}

func newTestQuizService(t *testing.T) (QuizService, *quizServiceMocks) {
	t.Helper()
	m := &quizServiceMocks{
		quizRepo:    new(MockQuizRepository),
		attemptRepo: new(MockQuizAttemptRepository),
		txManager:   new(MockTransactionManager),
		cache:       new(MockCache),
		generator:   new(MockTextGenerator),
	}
	generation := newTestGenerationService(m.generator)
	svc := NewQuizService(m.quizRepo, m.attemptRepo, m.txManager, m.cache, generation, testGenerationConfig())
	return svc, m
}

func sampleStoredQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:         "quiz-1",
		OwnerID:    "owner-1",
		Title:      "Go Basics",
		Difficulty: domain.DifficultyMedium,
		Questions: []*domain.Question{
			{
				ID:           "q-1",
				QuizID:       "quiz-1",
				QuestionText: "Which keyword starts a goroutine?",
				QuestionType: domain.QuestionTypeMultipleChoice,
				OrderIndex:   0,
				Options: []*domain.Option{
					{ID: "o-1", QuestionID: "q-1", OptionText: "go", IsCorrect: true, OrderIndex: 0},
					{ID: "o-2", QuestionID: "q-1", OptionText: "run", IsCorrect: false, OrderIndex: 1},
				},
			},
			{
				ID:           "q-2",
				QuizID:       "quiz-1",
				QuestionText: "What does go vet do?",
				QuestionType: domain.QuestionTypeMultipleChoice,
				OrderIndex:   1,
				Options: []*domain.Option{
					{ID: "o-3", QuestionID: "q-2", OptionText: "Static analysis", IsCorrect: true, OrderIndex: 0},
					{ID: "o-4", QuestionID: "q-2", OptionText: "Formats code", IsCorrect: false, OrderIndex: 1},
				},
			},
		},
	}
}

func TestCreateFromGenerated_PersistsInsideTransaction(t *testing.T) {
	svc, m := newTestQuizService(t)

	gen := &domain.GeneratedQuiz{
		Title:      "Go Basics",
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.GeneratedQuestion{
			{
				QuestionText: "Pick go",
				QuestionType: domain.QuestionTypeMultipleChoice,
				Options: []domain.GeneratedOption{
					{OptionText: "go", IsCorrect: true, OrderIndex: 0},
					{OptionText: "stop", IsCorrect: false, OrderIndex: 1},
				},
			},
		},
	}

	m.txManager.On("WithTransaction", mock.Anything).Return(nil)
	m.quizRepo.On("CreateQuiz", mock.Anything, mock.MatchedBy(func(quiz *domain.Quiz) bool {
		return quiz.OwnerID == "owner-1" && len(quiz.Questions) == 1
	})).Return(nil)

	resp, err := svc.CreateFromGenerated(context.Background(), "owner-1", gen)

	require.NoError(t, err)
	assert.Equal(t, "Go Basics", resp.Title)
	assert.Equal(t, "easy", resp.Difficulty)
	m.quizRepo.AssertExpectations(t)
	m.txManager.AssertExpectations(t)
}

func TestCreateFromGenerated_InvalidQuizNeverTouchesRepo(t *testing.T) {
	svc, m := newTestQuizService(t)

	gen := &domain.GeneratedQuiz{Title: "No questions", Difficulty: domain.DifficultyEasy}

	_, err := svc.CreateFromGenerated(context.Background(), "owner-1", gen)

	assertDomainCode(t, err, domain.CodeInvalidInput)
	m.quizRepo.AssertNotCalled(t, "CreateQuiz", mock.Anything, mock.Anything)
}

func TestGetQuiz_NotFound(t *testing.T) {
	svc, m := newTestQuizService(t)
	m.quizRepo.On("GetQuizByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.GetQuiz(context.Background(), "missing", "owner-1")

	assertDomainCode(t, err, domain.CodeQuizNotFound)
}

func TestGetQuiz_NotOwnedIsForbidden(t *testing.T) {
	svc, m := newTestQuizService(t)
	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)

	_, err := svc.GetQuiz(context.Background(), "quiz-1", "someone-else")

	assertDomainCode(t, err, domain.CodeForbidden)
}

func TestGetQuiz_OwnerSeesAnswers(t *testing.T) {
	svc, m := newTestQuizService(t)
	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)

	resp, err := svc.GetQuiz(context.Background(), "quiz-1", "owner-1")

	require.NoError(t, err)
	require.Len(t, resp.Questions, 2)
	assert.True(t, resp.Questions[0].Options[0].IsCorrect)
}

func TestGetTakeQuiz_CacheMissLoadsAndCaches(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)
	m.cache.On("Set", mock.Anything, mock.Anything, mock.MatchedBy(func(payload string) bool {
		// The cached payload must never contain answer flags.
		return !containsField(payload, "is_correct")
	}), time.Minute).Return(nil)

	resp, err := svc.GetTakeQuiz(context.Background(), "quiz-1")

	require.NoError(t, err)
	require.Len(t, resp.Questions, 2)
	m.cache.AssertExpectations(t)
}

func TestGetTakeQuiz_CacheHitSkipsRepository(t *testing.T) {
	svc, m := newTestQuizService(t)

	cached, err := json.Marshal(dto.TakeQuizResponse{ID: "quiz-1", Title: "Cached"})
	require.NoError(t, err)
	m.cache.On("Get", mock.Anything, mock.Anything).Return(string(cached), nil)

	resp, err := svc.GetTakeQuiz(context.Background(), "quiz-1")

	require.NoError(t, err)
	assert.Equal(t, "Cached", resp.Title)
	m.quizRepo.AssertNotCalled(t, "GetQuizByID", mock.Anything, mock.Anything)
}

func TestUpdateQuiz_InvalidatesTakeCache(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)
	m.txManager.On("WithTransaction", mock.Anything).Return(nil)
	m.quizRepo.On("ReplaceQuizContent", mock.Anything, mock.Anything).Return(nil)
	m.cache.On("Delete", mock.Anything, takeCacheKey("quiz-1")).Return(nil)

	_, err := svc.UpdateQuiz(context.Background(), "quiz-1", "owner-1", dto.UpdateQuizRequest{
		Title:      "Go Basics v2",
		Difficulty: "hard",
		Questions: []dto.CreateQuestionRequest{
			{
				QuestionText: "Pick go",
				Options: []dto.CreateOptionRequest{
					{OptionText: "go", IsCorrect: true},
					{OptionText: "stop", IsCorrect: false},
				},
			},
		},
	})

	require.NoError(t, err)
	m.cache.AssertExpectations(t)
}

func TestDeleteQuiz_InvalidatesTakeCache(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)
	m.quizRepo.On("DeleteQuiz", mock.Anything, "quiz-1").Return(nil)
	m.cache.On("Delete", mock.Anything, takeCacheKey("quiz-1")).Return(nil)

	err := svc.DeleteQuiz(context.Background(), "quiz-1", "owner-1")

	require.NoError(t, err)
	m.cache.AssertExpectations(t)
}

func TestSubmitAttempt_ScoresAndPersists(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)
	m.attemptRepo.On("SaveAttempt", mock.Anything, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.UserID == "user-1" && a.CorrectCount == 1 && a.QuestionCount == 2
	})).Return(nil)

	resp, err := svc.SubmitAttempt(context.Background(), "quiz-1", "user-1", dto.SubmitAttemptRequest{
		Answers: []dto.AttemptAnswer{
			{QuestionID: "q-1", OptionID: "o-1"}, // correct
			{QuestionID: "q-2", OptionID: "o-4"}, // wrong
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CorrectCount)
	assert.Equal(t, 2, resp.QuestionCount)
	assert.InDelta(t, 50.0, resp.Score, 0.001)
	m.attemptRepo.AssertExpectations(t)
}

func TestSubmitAttempt_UnansweredCountsAsIncorrect(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)
	m.attemptRepo.On("SaveAttempt", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.SubmitAttempt(context.Background(), "quiz-1", "user-1", dto.SubmitAttemptRequest{
		Answers: []dto.AttemptAnswer{{QuestionID: "q-1", OptionID: "o-1"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CorrectCount)
	assert.Equal(t, 2, resp.QuestionCount)
}

func TestSubmitAttempt_RejectsUnknownOption(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)

	_, err := svc.SubmitAttempt(context.Background(), "quiz-1", "user-1", dto.SubmitAttemptRequest{
		Answers: []dto.AttemptAnswer{{QuestionID: "q-1", OptionID: "nope"}},
	})

	assertDomainCode(t, err, domain.CodeInvalidInput)
	m.attemptRepo.AssertNotCalled(t, "SaveAttempt", mock.Anything, mock.Anything)
}

func TestAddGeneratedQuestions_AppendsWithContinuedOrder(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.quizRepo.On("GetQuizByID", mock.Anything, "quiz-1").Return(sampleStoredQuiz(), nil)
	m.generator.On("Generate", mock.Anything, mock.Anything).Return(wellFormedReply, nil)
	m.txManager.On("WithTransaction", mock.Anything).Return(nil)
	m.quizRepo.On("ReplaceQuizContent", mock.Anything, mock.MatchedBy(func(quiz *domain.Quiz) bool {
		if len(quiz.Questions) != 4 {
			return false
		}
		return quiz.Questions[2].OrderIndex == 2 && quiz.Questions[3].OrderIndex == 3
	})).Return(nil)
	m.cache.On("Delete", mock.Anything, takeCacheKey("quiz-1")).Return(nil)

	resp, err := svc.AddGeneratedQuestions(context.Background(), "quiz-1", "owner-1", dto.GenerateMoreRequest{
		QuestionCount: 2,
		OptionsCount:  2,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Questions, 4)
	m.quizRepo.AssertExpectations(t)
}

func containsField(payload, field string) bool {
	return strings.Contains(payload, `"`+field+`"`)
}
