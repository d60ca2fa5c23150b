package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain.
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Quiz specific errors
	CodeQuizNotFound ErrorCode = "QUIZ_NOT_FOUND"

	// AI generation pipeline errors. All of these surface to the end user
	// as a generic retry message; the code and context are for logs only.
	CodeGenerationConfig ErrorCode = "GENERATION_CONFIG_ERROR"
	CodeLLMService       ErrorCode = "LLM_SERVICE_ERROR"
	CodeResponseParse    ErrorCode = "RESPONSE_PARSE_ERROR"
	CodeResponseInvalid  ErrorCode = "RESPONSE_INVALID"
)

// DomainError represents a domain-specific error.
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface.
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches structured detail for logging.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError.
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewRateLimitedError(retryAfterSeconds int) *DomainError {
	return NewError(CodeRateLimited, "Too many requests, please slow down", nil).
		WithContext("retry_after_seconds", retryAfterSeconds)
}

// NewGenerationConfigError signals a missing or unusable generative service
// credential. Raised before any network call is attempted.
func NewGenerationConfigError(message string) *DomainError {
	return NewError(CodeGenerationConfig, message, nil)
}

// NewLLMServiceError wraps a transport or provider-side failure of the
// external generative service.
func NewLLMServiceError(cause error) *DomainError {
	return NewError(CodeLLMService, "Failed to generate quiz, please try again", cause)
}

// NewResponseParseError signals that the provider answered but its reply
// contained no usable JSON. Kept distinct from CodeLLMService so the logs
// can tell "the provider is down" from "the provider answered unusably".
func NewResponseParseError(cause error, rawLength int) *DomainError {
	return NewError(CodeResponseParse, "Failed to parse AI response", cause).
		WithContext("raw_length", rawLength)
}

// NewResponseInvalidError signals a shape, field, or cardinality violation
// in an otherwise parseable AI response.
func NewResponseInvalidError(cause error) *DomainError {
	return NewError(CodeResponseInvalid, "Failed to generate quiz, please check your prompt and try again", cause)
}
