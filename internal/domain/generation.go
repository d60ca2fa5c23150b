package domain

import "context"

// GenerationRequest is the caller-validated input to the generation
// pipeline. Difficulty is authoritative: the normalized output always
// carries this value, never one echoed by the model.
type GenerationRequest struct {
	Prompt        string
	Difficulty    Difficulty
	QuestionCount int
	OptionsCount  int
	Title         string // optional; overrides the model-produced title
}

// GeneratedQuiz is the canonical, trusted output of the normalization
// pipeline. It is immutable once normalization succeeds; durable identity
// is assigned later by the persistence layer.
type GeneratedQuiz struct {
	Title       string
	Description string
	Difficulty  Difficulty
	Questions   []GeneratedQuestion
}

type GeneratedQuestion struct {
	QuestionText string
	QuestionType string
	OrderIndex   int
	Options      []GeneratedOption
}

type GeneratedOption struct {
	OptionText string
	IsCorrect  bool
	OrderIndex int
}

// TextGenerator is the port to the external generative text service. The
// reply is free text expected to contain JSON, fenced or bare; nothing about
// its shape is guaranteed.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TransactionManager runs a function inside a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
