package repository

import (
	"context"
	"fmt"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/repository/models"
	"quizforge/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizAttemptRepository persists quiz attempts.
type QuizAttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt *domain.QuizAttempt) error
	ListAttemptsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.QuizAttempt, error)
	CountAttemptsByUser(ctx context.Context, userID string) (int, error)
}

type sqlxQuizAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizAttemptRepository creates a new attempt repository.
func NewSQLXQuizAttemptRepository(db *sqlx.DB) QuizAttemptRepository {
	return &sqlxQuizAttemptRepository{db: db}
}

// SaveAttempt inserts an attempt, assigning its ULID.
func (r *sqlxQuizAttemptRepository) SaveAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	exec := GetExecutor(ctx, r.db)

	attempt.ID = util.NewULID()
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}

	row := models.QuizAttempt{
		ID:            attempt.ID,
		UserID:        attempt.UserID,
		QuizID:        attempt.QuizID,
		CorrectCount:  attempt.CorrectCount,
		QuestionCount: attempt.QuestionCount,
		Score:         attempt.Score,
		AttemptedAt:   attempt.AttemptedAt,
	}

	query := `INSERT INTO quiz_attempts (id, user_id, quiz_id, correct_count, question_count, score, attempted_at)
	          VALUES (:id, :user_id, :quiz_id, :correct_count, :question_count, :score, :attempted_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, &row); err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

// ListAttemptsByUser returns a page of the user's attempts, newest first.
func (r *sqlxQuizAttemptRepository) ListAttemptsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.QuizAttempt, error) {
	exec := GetExecutor(ctx, r.db)

	var rows []models.QuizAttempt
	err := sqlx.SelectContext(ctx, exec, &rows,
		`SELECT * FROM quiz_attempts WHERE user_id = $1 ORDER BY attempted_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]*domain.QuizAttempt, 0, len(rows))
	for i := range rows {
		row := rows[i]
		attempts = append(attempts, &domain.QuizAttempt{
			ID:            row.ID,
			UserID:        row.UserID,
			QuizID:        row.QuizID,
			CorrectCount:  row.CorrectCount,
			QuestionCount: row.QuestionCount,
			Score:         row.Score,
			AttemptedAt:   row.AttemptedAt,
		})
	}
	return attempts, nil
}

// CountAttemptsByUser returns the user's total attempt count.
func (r *sqlxQuizAttemptRepository) CountAttemptsByUser(ctx context.Context, userID string) (int, error) {
	exec := GetExecutor(ctx, r.db)

	var count int
	err := sqlx.GetContext(ctx, exec, &count,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}
