package dto

import "time"

// ErrorResponse represents an error in the API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OptionPayload is a full option view, including the answer flag. Only
// surfaced to quiz owners (composing/editing), never to takers.
type OptionPayload struct {
	ID         string `json:"id,omitempty"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// QuestionPayload is a full question view for quiz owners.
type QuestionPayload struct {
	ID           string          `json:"id,omitempty"`
	QuestionText string          `json:"question_text"`
	QuestionType string          `json:"question_type"`
	OrderIndex   int             `json:"order_index"`
	Options      []OptionPayload `json:"options"`
}

// QuizResponse is a full quiz view for its owner.
type QuizResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty"`
	Questions   []QuestionPayload `json:"questions"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// QuizSummary is a list-view row without questions.
type QuizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Difficulty    string    `json:"difficulty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuizListResponse wraps the owner's quizzes.
type QuizListResponse struct {
	Quizzes []QuizSummary `json:"quizzes"`
}

// TakeOption is an option with the answer flag stripped.
type TakeOption struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	OrderIndex int    `json:"order_index"`
}

// TakeQuestion is a question with answer flags stripped.
type TakeQuestion struct {
	ID           string       `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType string       `json:"question_type"`
	OrderIndex   int          `json:"order_index"`
	Options      []TakeOption `json:"options"`
}

// TakeQuizResponse is the answer-stripped payload served to quiz takers.
type TakeQuizResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Difficulty  string         `json:"difficulty"`
	Questions   []TakeQuestion `json:"questions"`
}

// CreateOptionRequest is one option in a manual create/update.
type CreateOptionRequest struct {
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// CreateQuestionRequest is one question in a manual create/update.
type CreateQuestionRequest struct {
	QuestionText string                `json:"question_text"`
	QuestionType string                `json:"question_type"`
	Options      []CreateOptionRequest `json:"options"`
}

// CreateQuizRequest is the body for manual quiz creation.
type CreateQuizRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Difficulty  string                  `json:"difficulty"`
	Questions   []CreateQuestionRequest `json:"questions"`
}

// UpdateQuizRequest replaces a quiz's content wholesale.
type UpdateQuizRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Difficulty  string                  `json:"difficulty"`
	Questions   []CreateQuestionRequest `json:"questions"`
}

// AttemptAnswer is one selected option in a submission.
type AttemptAnswer struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

// SubmitAttemptRequest is the body for taking a quiz.
type SubmitAttemptRequest struct {
	Answers []AttemptAnswer `json:"answers"`
}

// AttemptResponse is the scored result of a submission.
type AttemptResponse struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quiz_id"`
	CorrectCount  int       `json:"correct_count"`
	QuestionCount int       `json:"question_count"`
	Score         float64   `json:"score"`
	AttemptedAt   time.Time `json:"attempted_at"`
}
