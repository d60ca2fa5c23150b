package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"quizforge/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func sampleQuiz() *domain.Quiz {
	return &domain.Quiz{
		OwnerID:     "01OWNER",
		Title:       "Capitals",
		Description: "European capitals",
		Difficulty:  domain.DifficultyEasy,
		Questions: []*domain.Question{
			{
				QuestionText: "Capital of France?",
				QuestionType: domain.QuestionTypeMultipleChoice,
				OrderIndex:   0,
				Options: []*domain.Option{
					{OptionText: "Paris", IsCorrect: true, OrderIndex: 0},
					{OptionText: "Lyon", IsCorrect: false, OrderIndex: 1},
				},
			},
		},
	}
}

func TestCreateQuiz_CascadeInsertsQuizThenQuestionsThenOptions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec("INSERT INTO quizzes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO questions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO options").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO options").WillReturnResult(sqlmock.NewResult(0, 1))

	quiz := sampleQuiz()
	err := repo.CreateQuiz(context.Background(), quiz)
	require.NoError(t, err)

	// The repository, not the caller, assigns durable identity.
	assert.NotEmpty(t, quiz.ID)
	assert.NotEmpty(t, quiz.Questions[0].ID)
	assert.NotEmpty(t, quiz.Questions[0].Options[0].ID)
	assert.Equal(t, quiz.ID, quiz.Questions[0].QuizID)
	assert.Equal(t, quiz.Questions[0].ID, quiz.Questions[0].Options[1].QuestionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQuiz_FailedQuestionInsertStopsCascade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec("INSERT INTO quizzes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO questions").WillReturnError(sql.ErrConnDone)

	err := repo.CreateQuiz(context.Background(), sampleQuiz())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert question")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuizByID_NotFoundReturnsNilNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectQuery("SELECT \\* FROM quizzes").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	quiz, err := repo.GetQuizByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, quiz)
}

func TestGetQuizByID_LoadsQuestionsAndOptionsInOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM quizzes").
		WithArgs("01QUIZ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "difficulty", "created_at", "updated_at", "deleted_at"}).
			AddRow("01QUIZ", "01OWNER", "Capitals", "", "easy", now, now, nil))
	mock.ExpectQuery("SELECT \\* FROM questions").
		WithArgs("01QUIZ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "question_text", "question_type", "order_index", "created_at", "updated_at", "deleted_at"}).
			AddRow("01Q1", "01QUIZ", "Capital of France?", "multiple_choice", 0, now, now, nil))
	mock.ExpectQuery("SELECT \\* FROM options").
		WithArgs("01Q1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "option_text", "is_correct", "order_index", "created_at", "updated_at", "deleted_at"}).
			AddRow("01O1", "01Q1", "Paris", true, 0, now, now, nil).
			AddRow("01O2", "01Q1", "Lyon", false, 1, now, now, nil))

	quiz, err := repo.GetQuizByID(context.Background(), "01QUIZ")
	require.NoError(t, err)
	require.NotNil(t, quiz)
	require.Len(t, quiz.Questions, 1)
	require.Len(t, quiz.Questions[0].Options, 2)
	assert.Equal(t, "Paris", quiz.Questions[0].Options[0].OptionText)
	assert.True(t, quiz.Questions[0].Options[0].IsCorrect)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteQuiz_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec("UPDATE quizzes SET deleted_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteQuiz(context.Background(), "missing")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
}
