package validation

import (
	"regexp"
	"strings"

	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/dto"
)

const (
	maxPromptLength      = 2000
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxSafetyContent     = 5000
	minOptionsPerQ       = 2
)

// Validator provides request validation functionality. Bounds on generated
// content come from configuration so operators can tighten them without a
// rebuild.
type Validator struct {
	genCfg config.GenerationConfig
}

// NewValidator creates a new validator instance.
func NewValidator(genCfg config.GenerationConfig) *Validator {
	return &Validator{genCfg: genCfg}
}

// ValidateGenerateQuizRequest validates the body for AI-backed generation.
func (v *Validator) ValidateGenerateQuizRequest(req dto.GenerateQuizRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(req.Prompt) == "" {
		errs = append(errs, domain.NewMissingFieldError("prompt"))
	} else if len(req.Prompt) > maxPromptLength {
		errs = append(errs, domain.NewOutOfRangeError("prompt", len(req.Prompt), 1, maxPromptLength))
	}

	if _, ok := domain.ParseDifficulty(req.Difficulty); !ok {
		errs = append(errs, domain.NewInvalidFormatError("difficulty", req.Difficulty))
	}

	errs = append(errs, v.validateCounts(req.QuestionCount, req.OptionsCount)...)

	if len(req.Title) > maxTitleLength {
		errs = append(errs, domain.NewOutOfRangeError("title", len(req.Title), 0, maxTitleLength))
	}

	return errs
}

// ValidateGenerateMoreRequest validates a request for additional questions.
func (v *Validator) ValidateGenerateMoreRequest(quizID string, req dto.GenerateMoreRequest) domain.ValidationErrors {
	errs := v.ValidateQuizID(quizID)
	errs = append(errs, v.validateCounts(req.QuestionCount, req.OptionsCount)...)
	return errs
}

// ValidateCreateQuizRequest validates a manually composed quiz.
func (v *Validator) ValidateCreateQuizRequest(req dto.CreateQuizRequest) domain.ValidationErrors {
	return v.validateQuizContent(req.Title, req.Description, req.Difficulty, req.Questions)
}

// ValidateUpdateQuizRequest validates a wholesale content replacement.
func (v *Validator) ValidateUpdateQuizRequest(quizID string, req dto.UpdateQuizRequest) domain.ValidationErrors {
	errs := v.ValidateQuizID(quizID)
	errs = append(errs, v.validateQuizContent(req.Title, req.Description, req.Difficulty, req.Questions)...)
	return errs
}

// ValidateQuizID checks the path parameter's ULID format.
func (v *Validator) ValidateQuizID(quizID string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(quizID) == "" {
		errs = append(errs, domain.NewMissingFieldError("quiz_id"))
	} else if !isValidULID(quizID) {
		errs = append(errs, domain.NewInvalidFormatError("quiz_id", quizID))
	}
	return errs
}

// ValidateSubmitAttemptRequest validates a quiz submission.
func (v *Validator) ValidateSubmitAttemptRequest(quizID string, req dto.SubmitAttemptRequest) domain.ValidationErrors {
	errs := v.ValidateQuizID(quizID)
	if len(req.Answers) == 0 {
		errs = append(errs, domain.NewMissingFieldError("answers"))
	}
	for _, answer := range req.Answers {
		if !isValidULID(answer.QuestionID) {
			errs = append(errs, domain.NewInvalidFormatError("question_id", answer.QuestionID))
		}
		if !isValidULID(answer.OptionID) {
			errs = append(errs, domain.NewInvalidFormatError("option_id", answer.OptionID))
		}
	}
	return errs
}

// ValidateSafetyCheckRequest validates a moderation request.
func (v *Validator) ValidateSafetyCheckRequest(req dto.SafetyCheckRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, domain.NewMissingFieldError("content"))
	} else if len(req.Content) > maxSafetyContent {
		errs = append(errs, domain.NewOutOfRangeError("content", len(req.Content), 1, maxSafetyContent))
	}
	return errs
}

func (v *Validator) validateCounts(questionCount, optionsCount int) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if questionCount < 1 || questionCount > v.genCfg.MaxQuestionCount {
		errs = append(errs, domain.NewOutOfRangeError("question_count", questionCount, 1, v.genCfg.MaxQuestionCount))
	}
	if optionsCount < minOptionsPerQ || optionsCount > v.genCfg.MaxOptionsCount {
		errs = append(errs, domain.NewOutOfRangeError("options_count", optionsCount, minOptionsPerQ, v.genCfg.MaxOptionsCount))
	}
	return errs
}

func (v *Validator) validateQuizContent(title, description, difficulty string, questions []dto.CreateQuestionRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(title) == "" {
		errs = append(errs, domain.NewMissingFieldError("title"))
	} else if len(title) > maxTitleLength {
		errs = append(errs, domain.NewOutOfRangeError("title", len(title), 1, maxTitleLength))
	}

	if len(description) > maxDescriptionLength {
		errs = append(errs, domain.NewOutOfRangeError("description", len(description), 0, maxDescriptionLength))
	}

	if _, ok := domain.ParseDifficulty(difficulty); !ok {
		errs = append(errs, domain.NewInvalidFormatError("difficulty", difficulty))
	}

	if len(questions) == 0 {
		errs = append(errs, domain.NewMissingFieldError("questions"))
	}
	for _, question := range questions {
		if strings.TrimSpace(question.QuestionText) == "" {
			errs = append(errs, domain.NewMissingFieldError("question_text"))
		}
		if question.QuestionType != "" && question.QuestionType != domain.QuestionTypeMultipleChoice {
			errs = append(errs, domain.NewInvalidFormatError("question_type", question.QuestionType))
		}
		if len(question.Options) < minOptionsPerQ || len(question.Options) > v.genCfg.MaxOptionsCount {
			errs = append(errs, domain.NewOutOfRangeError("options", len(question.Options), minOptionsPerQ, v.genCfg.MaxOptionsCount))
			continue
		}
		correct := 0
		for _, opt := range question.Options {
			if strings.TrimSpace(opt.OptionText) == "" {
				errs = append(errs, domain.NewMissingFieldError("option_text"))
			}
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			errs = append(errs, domain.NewInvalidFormatError("options", "exactly one option must be correct"))
		}
	}

	return errs
}

// isValidULID checks Crockford base32, 26 characters.
func isValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
