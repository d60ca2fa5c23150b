package models

import (
	"database/sql"
	"time"
)

// Quiz is the quizzes table row.
type Quiz struct {
	ID          string       `db:"id"`
	OwnerID     string       `db:"owner_id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Difficulty  string       `db:"difficulty"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	DeletedAt   sql.NullTime `db:"deleted_at"`
}

// Question is the questions table row. OrderIndex is dense and zero-based
// within its quiz.
type Question struct {
	ID           string       `db:"id"`
	QuizID       string       `db:"quiz_id"`
	QuestionText string       `db:"question_text"`
	QuestionType string       `db:"question_type"`
	OrderIndex   int          `db:"order_index"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	DeletedAt    sql.NullTime `db:"deleted_at"`
}

// Option is the options table row. OrderIndex is dense and zero-based
// within its question.
type Option struct {
	ID         string       `db:"id"`
	QuestionID string       `db:"question_id"`
	OptionText string       `db:"option_text"`
	IsCorrect  bool         `db:"is_correct"`
	OrderIndex int          `db:"order_index"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
	DeletedAt  sql.NullTime `db:"deleted_at"`
}

// QuizAttempt is the quiz_attempts table row.
type QuizAttempt struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	QuizID        string    `db:"quiz_id"`
	CorrectCount  int       `db:"correct_count"`
	QuestionCount int       `db:"question_count"`
	Score         float64   `db:"score"`
	AttemptedAt   time.Time `db:"attempted_at"`
}
