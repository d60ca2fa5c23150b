package quizgen

import (
	"testing"

	"quizforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Prompt:        "European capitals",
		Difficulty:    domain.DifficultyEasy,
		QuestionCount: 1,
		OptionsCount:  2,
	}
}

func mustParse(t *testing.T, text string) interface{} {
	t.Helper()
	tree, err := ParseTree(text)
	require.NoError(t, err)
	return tree
}

func TestParseTree_UnterminatedJSONIsParseError(t *testing.T) {
	_, err := ParseTree(`{"title": "X"`)

	var parseErr *ResponseParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, len(`{"title": "X"`), parseErr.RawLength)
}

func TestNormalize_HappyPath(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "Capital of France?",
				"options": [
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "Lyon", "is_correct": false}
				]
			}
		]
	}`)

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Capitals", quiz.Title)
	assert.Equal(t, domain.DifficultyEasy, quiz.Difficulty)
	require.Len(t, quiz.Questions, 1)

	q := quiz.Questions[0]
	assert.Equal(t, "Capital of France?", q.QuestionText)
	assert.Equal(t, domain.QuestionTypeMultipleChoice, q.QuestionType)
	assert.Equal(t, 0, q.OrderIndex)
	require.Len(t, q.Options, 2)
	assert.Equal(t, 0, q.Options[0].OrderIndex)
	assert.Equal(t, 1, q.Options[1].OrderIndex)
	assert.True(t, q.Options[0].IsCorrect)
	assert.False(t, q.Options[1].IsCorrect)
}

func TestNormalize_RootMustBeObject(t *testing.T) {
	tree := mustParse(t, `[1, 2, 3]`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var shapeErr *InvalidShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "root", shapeErr.Path)
}

func TestNormalize_MissingTitle(t *testing.T) {
	tree := mustParse(t, `{"questions": []}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "title", fieldErr.Path)
}

func TestNormalize_BlankTitleAfterTrim(t *testing.T) {
	tree := mustParse(t, `{"title": "   ", "questions": []}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "title", fieldErr.Path)
}

func TestNormalize_RequestTitleOverridesModelTitle(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Model Title",
		"questions": [
			{
				"question_text": "Q?",
				"options": [
					{"option_text": "A", "is_correct": true},
					{"option_text": "B", "is_correct": false}
				]
			}
		]
	}`)

	req := testRequest()
	req.Title = "  My Own Title  "

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, req)
	require.NoError(t, err)
	assert.Equal(t, "My Own Title", quiz.Title)
}

func TestNormalize_TitleWordCap(t *testing.T) {
	tree := mustParse(t, `{
		"title": "one two three four five six",
		"questions": [
			{
				"question_text": "Q?",
				"options": [
					{"option_text": "A", "is_correct": true},
					{"option_text": "B", "is_correct": false}
				]
			}
		]
	}`)

	quiz, err := NewNormalizer(3, zap.NewNop()).Normalize(tree, testRequest())
	require.NoError(t, err)
	assert.Equal(t, "one two three", quiz.Title)
}

func TestNormalize_QuestionsMustBeArray(t *testing.T) {
	tree := mustParse(t, `{"title": "X", "questions": "nope"}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "questions", fieldErr.Path)
}

func TestNormalize_EmptyQuestionsRejected(t *testing.T) {
	tree := mustParse(t, `{"title": "X", "questions": []}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "questions", fieldErr.Path)
}

func TestNormalize_TwoCorrectOptionsRejected(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "Capital of France?",
				"options": [
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "Lyon", "is_correct": true}
				]
			}
		]
	}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var cardErr *AnswerCardinalityError
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 0, cardErr.QuestionIndex)
	assert.Equal(t, 2, cardErr.Found)
}

func TestNormalize_ZeroCorrectOptionsRejected(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "Capital of France?",
				"options": [
					{"option_text": "Paris", "is_correct": false},
					{"option_text": "Lyon", "is_correct": false}
				]
			}
		]
	}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var cardErr *AnswerCardinalityError
	require.ErrorAs(t, err, &cardErr)
	assert.Equal(t, 0, cardErr.Found)
}

// Zero options must fail the shape check before cardinality is evaluated.
func TestNormalize_EmptyOptionsFailsShapeBeforeCardinality(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{"question_text": "Capital of France?", "options": []}
		]
	}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "questions[0].options", fieldErr.Path)
}

func TestNormalize_BlankOptionTextAddressed(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "Capital of France?",
				"options": [
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "  ", "is_correct": false}
				]
			}
		]
	}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "questions[0].options[1].option_text", fieldErr.Path)
}

func TestNormalize_WrongQuestionTypeRejectedNotCoerced(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "Capital of France?",
				"question_type": "true_false",
				"options": [
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "Lyon", "is_correct": false}
				]
			}
		]
	}`)

	_, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "questions[0].question_type", fieldErr.Path)
}

// Model-supplied order_index values are discarded and reassigned densely.
func TestNormalize_OrderIndexReassignment(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "First?",
				"order_index": 42,
				"options": [
					{"option_text": "A", "is_correct": true, "order_index": 9},
					{"option_text": "B", "is_correct": false, "order_index": 3},
					{"option_text": "C", "is_correct": false, "order_index": 7}
				]
			},
			{
				"question_text": "Second?",
				"order_index": -5,
				"options": [
					{"option_text": "D", "is_correct": false, "order_index": 100},
					{"option_text": "E", "is_correct": true, "order_index": 100}
				]
			}
		]
	}`)

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())
	require.NoError(t, err)

	for i, q := range quiz.Questions {
		assert.Equal(t, i, q.OrderIndex)
		for j, opt := range q.Options {
			assert.Equal(t, j, opt.OrderIndex)
		}
	}
}

// The output difficulty always equals the caller's request, regardless of
// what the model echoed.
func TestNormalize_DifficultyOverride(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"difficulty": "hard",
		"questions": [
			{
				"question_text": "Capital of France?",
				"options": [
					{"option_text": "Paris", "is_correct": true},
					{"option_text": "Lyon", "is_correct": false}
				]
			}
		]
	}`)

	req := testRequest()
	req.Difficulty = domain.DifficultyEasy

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, req)
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyEasy, quiz.Difficulty)
}

func TestNormalize_IsCorrectCoercion(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Coercion",
		"questions": [
			{
				"question_text": "Q?",
				"options": [
					{"option_text": "A", "is_correct": "true"},
					{"option_text": "B", "is_correct": 0},
					{"option_text": "C"},
					{"option_text": "D", "is_correct": null}
				]
			}
		]
	}`)

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())
	require.NoError(t, err)

	opts := quiz.Questions[0].Options
	assert.True(t, opts[0].IsCorrect)
	assert.False(t, opts[1].IsCorrect)
	assert.False(t, opts[2].IsCorrect)
	assert.False(t, opts[3].IsCorrect)
}

// A count drift between request and response is tolerated, never rejected.
func TestNormalize_SoftCountMismatchAccepted(t *testing.T) {
	tree := mustParse(t, `{
		"title": "Capitals",
		"questions": [
			{
				"question_text": "One?",
				"options": [
					{"option_text": "A", "is_correct": true},
					{"option_text": "B", "is_correct": false}
				]
			},
			{
				"question_text": "Two?",
				"options": [
					{"option_text": "C", "is_correct": true},
					{"option_text": "D", "is_correct": false}
				]
			},
			{
				"question_text": "Three?",
				"options": [
					{"option_text": "E", "is_correct": true},
					{"option_text": "F", "is_correct": false}
				]
			}
		]
	}`)

	req := testRequest()
	req.QuestionCount = 5

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, req)
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 3)
}

func TestNormalize_TextFieldsTrimmed(t *testing.T) {
	tree := mustParse(t, `{
		"title": "  Capitals  ",
		"description": "  about capitals  ",
		"questions": [
			{
				"question_text": "  Capital of France?  ",
				"options": [
					{"option_text": "  Paris  ", "is_correct": true},
					{"option_text": "  Lyon  ", "is_correct": false}
				]
			}
		]
	}`)

	quiz, err := NewNormalizer(0, zap.NewNop()).Normalize(tree, testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Capitals", quiz.Title)
	assert.Equal(t, "about capitals", quiz.Description)
	assert.Equal(t, "Capital of France?", quiz.Questions[0].QuestionText)
	assert.Equal(t, "Paris", quiz.Questions[0].Options[0].OptionText)
}

// Re-normalizing an already-normalized quiz must not change any text field.
func TestNormalize_TrimIdempotence(t *testing.T) {
	tree := mustParse(t, `{
		"title": "  Capitals  ",
		"questions": [
			{
				"question_text": "  Capital of France?  ",
				"options": [
					{"option_text": "  Paris ", "is_correct": true},
					{"option_text": " Lyon  ", "is_correct": false}
				]
			}
		]
	}`)

	normalizer := NewNormalizer(0, zap.NewNop())

	first, err := normalizer.Normalize(tree, testRequest())
	require.NoError(t, err)

	// Feed the normalized quiz back in as if it were model output.
	roundTrip := map[string]interface{}{
		"title":       first.Title,
		"description": first.Description,
		"questions":   []interface{}{},
	}
	for _, q := range first.Questions {
		options := []interface{}{}
		for _, o := range q.Options {
			options = append(options, map[string]interface{}{
				"option_text": o.OptionText,
				"is_correct":  o.IsCorrect,
			})
		}
		roundTrip["questions"] = append(roundTrip["questions"].([]interface{}), map[string]interface{}{
			"question_text": q.QuestionText,
			"question_type": q.QuestionType,
			"options":       options,
		})
	}

	second, err := normalizer.Normalize(roundTrip, testRequest())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
