package quizgen

import "fmt"

// ResponseParseError means the model's reply was not valid JSON even after
// fence extraction. Fatal to the generation attempt; the caller may retry
// the whole generation manually.
type ResponseParseError struct {
	RawLength int
	Err       error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("response is not valid JSON (%d bytes of raw text): %v", e.RawLength, e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// InvalidShapeError means the parsed tree has the wrong kind of value at the
// given path (e.g. the root is not an object).
type InvalidShapeError struct {
	Path string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("unexpected shape at %q", e.Path)
}

// InvalidFieldError means a required field is missing, has the wrong type,
// or is empty after trimming. Path is dotted with bracketed indices, e.g.
// "questions[2].options[0].option_text".
type InvalidFieldError struct {
	Path string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid or missing field %q", e.Path)
}

// AnswerCardinalityError means a question does not have exactly one correct
// option. The whole quiz is rejected, not just the offending question; a
// quiz with an invalid question is not safely presentable.
type AnswerCardinalityError struct {
	QuestionIndex int
	Found         int
}

func (e *AnswerCardinalityError) Error() string {
	return fmt.Sprintf("question %d has %d correct options, want exactly 1", e.QuestionIndex, e.Found)
}
