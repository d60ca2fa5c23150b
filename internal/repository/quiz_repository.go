package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/repository/models"
	"quizforge/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizRepository defines quiz persistence operations. Durable identifiers
// are assigned here, not by callers.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error)
	ListQuizzesByOwner(ctx context.Context, ownerID string) ([]*domain.Quiz, error)
	ReplaceQuizContent(ctx context.Context, quiz *domain.Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
}

type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new quiz repository backed by sqlx.
func NewSQLXQuizRepository(db *sqlx.DB) QuizRepository {
	return &sqlxQuizRepository{db: db}
}

// CreateQuiz inserts the quiz, its questions, and their options, assigning
// ULIDs as it goes. The cascade is a sequence of inserts; callers that need
// all-or-nothing semantics run it under the transaction manager.
func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	exec := GetExecutor(ctx, r.db)
	now := time.Now()

	quiz.ID = util.NewULID()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	quizQuery := `INSERT INTO quizzes (id, owner_id, title, description, difficulty, created_at, updated_at)
	              VALUES (:id, :owner_id, :title, :description, :difficulty, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, quizQuery, quizToModel(quiz)); err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	if err := r.insertQuestions(ctx, exec, quiz, now); err != nil {
		return err
	}
	return nil
}

func (r *sqlxQuizRepository) insertQuestions(ctx context.Context, exec DBTX, quiz *domain.Quiz, now time.Time) error {
	questionQuery := `INSERT INTO questions (id, quiz_id, question_text, question_type, order_index, created_at, updated_at)
	                  VALUES (:id, :quiz_id, :question_text, :question_type, :order_index, :created_at, :updated_at)`
	optionQuery := `INSERT INTO options (id, question_id, option_text, is_correct, order_index, created_at, updated_at)
	                VALUES (:id, :question_id, :option_text, :is_correct, :order_index, :created_at, :updated_at)`

	for _, question := range quiz.Questions {
		question.ID = util.NewULID()
		question.QuizID = quiz.ID
		question.CreatedAt = now
		question.UpdatedAt = now

		if _, err := sqlx.NamedExecContext(ctx, exec, questionQuery, questionToModel(question)); err != nil {
			return fmt.Errorf("failed to insert question %d: %w", question.OrderIndex, err)
		}

		for _, option := range question.Options {
			option.ID = util.NewULID()
			option.QuestionID = question.ID
			option.CreatedAt = now
			option.UpdatedAt = now

			if _, err := sqlx.NamedExecContext(ctx, exec, optionQuery, optionToModel(option)); err != nil {
				return fmt.Errorf("failed to insert option %d of question %d: %w",
					option.OrderIndex, question.OrderIndex, err)
			}
		}
	}
	return nil
}

// GetQuizByID loads a quiz with questions and options eagerly, ordered by
// order_index. Returns nil, nil when not found.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)

	var quizRow models.Quiz
	err := sqlx.GetContext(ctx, exec, &quizRow,
		`SELECT * FROM quizzes WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	quiz := quizFromModel(&quizRow)
	if err := r.loadQuestions(ctx, exec, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *sqlxQuizRepository) loadQuestions(ctx context.Context, exec DBTX, quiz *domain.Quiz) error {
	var questionRows []models.Question
	err := sqlx.SelectContext(ctx, exec, &questionRows,
		`SELECT * FROM questions WHERE quiz_id = $1 AND deleted_at IS NULL ORDER BY order_index`, quiz.ID)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}

	quiz.Questions = make([]*domain.Question, 0, len(questionRows))
	for i := range questionRows {
		question := questionFromModel(&questionRows[i])

		var optionRows []models.Option
		err := sqlx.SelectContext(ctx, exec, &optionRows,
			`SELECT * FROM options WHERE question_id = $1 AND deleted_at IS NULL ORDER BY order_index`, question.ID)
		if err != nil {
			return fmt.Errorf("failed to load options: %w", err)
		}

		question.Options = make([]*domain.Option, 0, len(optionRows))
		for j := range optionRows {
			question.Options = append(question.Options, optionFromModel(&optionRows[j]))
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return nil
}

// ListQuizzesByOwner returns the owner's quizzes with content loaded.
func (r *sqlxQuizRepository) ListQuizzesByOwner(ctx context.Context, ownerID string) ([]*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)

	var quizRows []models.Quiz
	err := sqlx.SelectContext(ctx, exec, &quizRows,
		`SELECT * FROM quizzes WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(quizRows))
	for i := range quizRows {
		quiz := quizFromModel(&quizRows[i])
		if err := r.loadQuestions(ctx, exec, quiz); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// ReplaceQuizContent updates the quiz row and replaces its questions and
// options wholesale. Runs as a cascade; callers wrap it in a transaction.
func (r *sqlxQuizRepository) ReplaceQuizContent(ctx context.Context, quiz *domain.Quiz) error {
	exec := GetExecutor(ctx, r.db)
	now := time.Now()
	quiz.UpdatedAt = now

	result, err := exec.ExecContext(ctx,
		`UPDATE quizzes SET title = $1, description = $2, difficulty = $3, updated_at = $4
		 WHERE id = $5 AND deleted_at IS NULL`,
		quiz.Title, quiz.Description, string(quiz.Difficulty), now, quiz.ID)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewQuizNotFoundError(quiz.ID)
	}

	if _, err := exec.ExecContext(ctx,
		`DELETE FROM options WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = $1)`, quiz.ID); err != nil {
		return fmt.Errorf("failed to clear options: %w", err)
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quiz.ID); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}

	return r.insertQuestions(ctx, exec, quiz, now)
}

// DeleteQuiz soft-deletes a quiz.
func (r *sqlxQuizRepository) DeleteQuiz(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, r.db)

	result, err := exec.ExecContext(ctx,
		`UPDATE quizzes SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewQuizNotFoundError(id)
	}
	return nil
}

// --- model mapping ---

func quizToModel(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:          q.ID,
		OwnerID:     q.OwnerID,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  string(q.Difficulty),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func quizFromModel(m *models.Quiz) *domain.Quiz {
	return &domain.Quiz{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: m.Description,
		Difficulty:  domain.Difficulty(m.Difficulty),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func questionToModel(q *domain.Question) *models.Question {
	return &models.Question{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		OrderIndex:   q.OrderIndex,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

func questionFromModel(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:           m.ID,
		QuizID:       m.QuizID,
		QuestionText: m.QuestionText,
		QuestionType: m.QuestionType,
		OrderIndex:   m.OrderIndex,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func optionToModel(o *domain.Option) *models.Option {
	return &models.Option{
		ID:         o.ID,
		QuestionID: o.QuestionID,
		OptionText: o.OptionText,
		IsCorrect:  o.IsCorrect,
		OrderIndex: o.OrderIndex,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func optionFromModel(m *models.Option) *domain.Option {
	return &domain.Option{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		OptionText: m.OptionText,
		IsCorrect:  m.IsCorrect,
		OrderIndex: m.OrderIndex,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
