package domain

import (
	"strings"
	"time"
)

// Difficulty is the quiz difficulty level. Only the three listed values
// are valid; anything else is rejected at the request boundary.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a raw difficulty string.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyHard:
		return DifficultyHard, true
	default:
		return "", false
	}
}

// QuestionTypeMultipleChoice is the only question type supported for
// AI-generated content. Other values from the model are rejected, not coerced.
const QuestionTypeMultipleChoice = "multiple_choice"

// Quiz is a persisted quiz owned by a user.
type Quiz struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Difficulty  Difficulty
	Questions   []*Question
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Question is a persisted question within a quiz. Questions are ordered by
// OrderIndex, dense and zero-based within their quiz.
type Question struct {
	ID           string
	QuizID       string
	QuestionText string
	QuestionType string
	OrderIndex   int
	Options      []*Option
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Option is a persisted answer option. OrderIndex is dense and zero-based
// within its question.
type Option struct {
	ID         string
	QuestionID string
	OptionText string
	IsCorrect  bool
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate validates the quiz.
func (q *Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return NewInvalidInputError("title is required")
	}
	if len(q.Questions) == 0 {
		return NewInvalidInputError("at least one question is required")
	}
	for _, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the question and its options, including the rule that
// a multiple-choice question has exactly one correct option.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return NewInvalidInputError("question text is required")
	}
	if q.QuestionType != QuestionTypeMultipleChoice {
		return NewInvalidInputError("unsupported question type: " + q.QuestionType)
	}
	if len(q.Options) < 2 {
		return NewInvalidInputError("a question needs at least two options")
	}
	correct := 0
	for _, opt := range q.Options {
		if strings.TrimSpace(opt.OptionText) == "" {
			return NewInvalidInputError("option text is required")
		}
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return NewInvalidInputError("a question must have exactly one correct option")
	}
	return nil
}

// QuizAttempt records one user's submission against a quiz.
type QuizAttempt struct {
	ID            string
	UserID        string
	QuizID        string
	CorrectCount  int
	QuestionCount int
	Score         float64
	SelectedByQ   map[string]string // question ID -> selected option ID
	AttemptedAt   time.Time
}
