package validation

import (
	"strings"
	"testing"

	"quizforge/internal/config"
	"quizforge/internal/dto"
	"quizforge/internal/util"

	"github.com/stretchr/testify/assert"
)

func newTestValidator() *Validator {
	return NewValidator(config.GenerationConfig{
		MaxQuestionCount: 20,
		MaxOptionsCount:  8,
		TitleWordLimit:   10,
	})
}

func validGenerateRequest() dto.GenerateQuizRequest {
	return dto.GenerateQuizRequest{
		Prompt:        "The history of aviation",
		Difficulty:    "medium",
		QuestionCount: 5,
		OptionsCount:  4,
	}
}

func TestValidateGenerateQuizRequest_Valid(t *testing.T) {
	errs := newTestValidator().ValidateGenerateQuizRequest(validGenerateRequest())
	assert.Empty(t, errs)
}

func TestValidateGenerateQuizRequest_MissingPrompt(t *testing.T) {
	req := validGenerateRequest()
	req.Prompt = "   "

	errs := newTestValidator().ValidateGenerateQuizRequest(req)
	assert.Len(t, errs, 1)
	assert.Equal(t, "prompt", errs[0].Field)
}

func TestValidateGenerateQuizRequest_BadDifficulty(t *testing.T) {
	req := validGenerateRequest()
	req.Difficulty = "nightmare"

	errs := newTestValidator().ValidateGenerateQuizRequest(req)
	assert.Len(t, errs, 1)
	assert.Equal(t, "difficulty", errs[0].Field)
}

func TestValidateGenerateQuizRequest_CountsOutOfRange(t *testing.T) {
	req := validGenerateRequest()
	req.QuestionCount = 0
	req.OptionsCount = 99

	errs := newTestValidator().ValidateGenerateQuizRequest(req)
	assert.Len(t, errs, 2)
}

func TestValidateGenerateQuizRequest_CollectsAllErrors(t *testing.T) {
	errs := newTestValidator().ValidateGenerateQuizRequest(dto.GenerateQuizRequest{
		Prompt:        "",
		Difficulty:    "bogus",
		QuestionCount: -1,
		OptionsCount:  1,
	})
	assert.Len(t, errs, 4)
}

func TestValidateQuizID(t *testing.T) {
	v := newTestValidator()

	assert.Empty(t, v.ValidateQuizID(util.NewULID()))
	assert.Len(t, v.ValidateQuizID(""), 1)
	assert.Len(t, v.ValidateQuizID("not-a-ulid"), 1)
}

func TestValidateCreateQuizRequest(t *testing.T) {
	v := newTestValidator()

	valid := dto.CreateQuizRequest{
		Title:      "Capitals",
		Difficulty: "easy",
		Questions: []dto.CreateQuestionRequest{
			{
				QuestionText: "Capital of France?",
				Options: []dto.CreateOptionRequest{
					{OptionText: "Paris", IsCorrect: true},
					{OptionText: "Lyon", IsCorrect: false},
				},
			},
		},
	}
	assert.Empty(t, v.ValidateCreateQuizRequest(valid))

	twoCorrect := valid
	twoCorrect.Questions = []dto.CreateQuestionRequest{
		{
			QuestionText: "Capital of France?",
			Options: []dto.CreateOptionRequest{
				{OptionText: "Paris", IsCorrect: true},
				{OptionText: "Lyon", IsCorrect: true},
			},
		},
	}
	errs := v.ValidateCreateQuizRequest(twoCorrect)
	assert.Len(t, errs, 1)
	assert.Equal(t, "options", errs[0].Field)
}

func TestValidateSafetyCheckRequest(t *testing.T) {
	v := newTestValidator()

	assert.Empty(t, v.ValidateSafetyCheckRequest(dto.SafetyCheckRequest{Content: "ancient Rome"}))
	assert.Len(t, v.ValidateSafetyCheckRequest(dto.SafetyCheckRequest{Content: ""}), 1)
	assert.Len(t, v.ValidateSafetyCheckRequest(dto.SafetyCheckRequest{
		Content: strings.Repeat("a", 5001),
	}), 1)
}

func TestValidateSubmitAttemptRequest(t *testing.T) {
	v := newTestValidator()
	quizID := util.NewULID()

	valid := dto.SubmitAttemptRequest{
		Answers: []dto.AttemptAnswer{{QuestionID: util.NewULID(), OptionID: util.NewULID()}},
	}
	assert.Empty(t, v.ValidateSubmitAttemptRequest(quizID, valid))

	assert.Len(t, v.ValidateSubmitAttemptRequest(quizID, dto.SubmitAttemptRequest{}), 1)

	badIDs := dto.SubmitAttemptRequest{
		Answers: []dto.AttemptAnswer{{QuestionID: "x", OptionID: "y"}},
	}
	assert.Len(t, v.ValidateSubmitAttemptRequest(quizID, badIDs), 2)
}
