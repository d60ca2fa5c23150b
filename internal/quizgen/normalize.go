package quizgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"quizforge/internal/domain"

	"go.uber.org/zap"
)

// ParseTree parses the extracted candidate text into an untyped value tree.
// Syntactically invalid JSON yields a ResponseParseError; no repair of
// truncated or malformed JSON is attempted.
func ParseTree(text string) (interface{}, error) {
	var tree interface{}
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		return nil, &ResponseParseError{RawLength: len(text), Err: err}
	}
	return tree, nil
}

// Normalizer walks an untyped value tree and produces a canonical
// GeneratedQuiz, or fails with a field-addressed error. Given the same tree
// and request it is a pure function; the logger is only used for soft
// count-mismatch warnings, which never affect the result.
type Normalizer struct {
	titleWordLimit int
	logger         *zap.Logger
}

// NewNormalizer creates a Normalizer. titleWordLimit caps automatically
// produced titles; zero disables the cap.
func NewNormalizer(titleWordLimit int, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{titleWordLimit: titleWordLimit, logger: logger}
}

// Normalize validates and normalizes the tree against req. Rules are
// evaluated in a fixed order and fail fast on the first violation.
// The output difficulty always comes from req, never from the tree.
func (n *Normalizer) Normalize(tree interface{}, req domain.GenerationRequest) (*domain.GeneratedQuiz, error) {
	root, ok := tree.(map[string]interface{})
	if !ok {
		return nil, &InvalidShapeError{Path: "root"}
	}

	title := req.Title
	if strings.TrimSpace(title) == "" {
		modelTitle, ok := nonEmptyString(root["title"])
		if !ok {
			return nil, &InvalidFieldError{Path: "title"}
		}
		title = capWords(modelTitle, n.titleWordLimit)
	} else {
		title = strings.TrimSpace(title)
	}

	rawQuestions, ok := root["questions"].([]interface{})
	if !ok {
		return nil, &InvalidFieldError{Path: "questions"}
	}
	if len(rawQuestions) == 0 {
		return nil, &InvalidFieldError{Path: "questions"}
	}

	questions := make([]domain.GeneratedQuestion, 0, len(rawQuestions))
	for i, rawQuestion := range rawQuestions {
		question, err := n.normalizeQuestion(rawQuestion, i, req.OptionsCount)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *question)
	}

	if len(questions) != req.QuestionCount {
		n.logger.Warn("generated question count differs from requested count",
			zap.Int("requested", req.QuestionCount),
			zap.Int("actual", len(questions)),
		)
	}

	description := ""
	if raw, present := root["description"]; present {
		if s, ok := raw.(string); ok {
			description = strings.TrimSpace(s)
		}
	}

	return &domain.GeneratedQuiz{
		Title:       title,
		Description: description,
		Difficulty:  req.Difficulty,
		Questions:   questions,
	}, nil
}

func (n *Normalizer) normalizeQuestion(raw interface{}, index int, requestedOptions int) (*domain.GeneratedQuestion, error) {
	path := fmt.Sprintf("questions[%d]", index)

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &InvalidShapeError{Path: path}
	}

	questionText, ok := nonEmptyString(obj["question_text"])
	if !ok {
		return nil, &InvalidFieldError{Path: path + ".question_text"}
	}

	// question_type is rejected when the model supplies anything other than
	// multiple_choice; a missing value defaults to it.
	if raw, present := obj["question_type"]; present {
		typ, ok := raw.(string)
		if !ok || strings.TrimSpace(typ) != domain.QuestionTypeMultipleChoice {
			return nil, &InvalidFieldError{Path: path + ".question_type"}
		}
	}

	rawOptions, ok := obj["options"].([]interface{})
	if !ok {
		return nil, &InvalidFieldError{Path: path + ".options"}
	}

	options := make([]domain.GeneratedOption, 0, len(rawOptions))
	for j, rawOption := range rawOptions {
		optionPath := fmt.Sprintf("%s.options[%d]", path, j)

		optObj, ok := rawOption.(map[string]interface{})
		if !ok {
			return nil, &InvalidShapeError{Path: optionPath}
		}

		optionText, ok := nonEmptyString(optObj["option_text"])
		if !ok {
			return nil, &InvalidFieldError{Path: optionPath + ".option_text"}
		}

		options = append(options, domain.GeneratedOption{
			OptionText: optionText,
			IsCorrect:  coerceBool(optObj["is_correct"]),
			OrderIndex: j, // model-supplied order_index is discarded
		})
	}

	if len(options) < 2 {
		return nil, &InvalidFieldError{Path: path + ".options"}
	}

	correct := 0
	for _, opt := range options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return nil, &AnswerCardinalityError{QuestionIndex: index, Found: correct}
	}

	if len(options) != requestedOptions {
		n.logger.Warn("generated option count differs from requested count",
			zap.Int("question_index", index),
			zap.Int("requested", requestedOptions),
			zap.Int("actual", len(options)),
		)
	}

	return &domain.GeneratedQuestion{
		QuestionText: questionText,
		QuestionType: domain.QuestionTypeMultipleChoice,
		OrderIndex:   index, // model-supplied order_index is discarded
		Options:      options,
	}, nil
}

// nonEmptyString narrows an untyped value to a trimmed, non-empty string.
func nonEmptyString(raw interface{}) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// coerceBool maps whatever the model put in is_correct to a strict bool.
// Truthy values are true, the boolean-ish strings, and non-zero numbers;
// anything else, including a missing value, is false. Never fails.
func coerceBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
		return false
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

// capWords truncates s to at most limit words. A zero limit disables the cap.
func capWords(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ")
}
