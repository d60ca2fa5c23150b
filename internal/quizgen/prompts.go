package quizgen

import (
	"math/rand"
	"strconv"
	"strings"

	"quizforge/internal/domain"
)

// Placeholder is a token substituted into a prompt template. Using typed
// constants keeps placeholder names checkable; an ad-hoc string key with a
// typo would silently survive substitution.
type Placeholder string

const (
	PlaceholderTopic         Placeholder = "{{TOPIC}}"
	PlaceholderDifficulty    Placeholder = "{{DIFFICULTY}}"
	PlaceholderQuestionCount Placeholder = "{{QUESTION_COUNT}}"
	PlaceholderOptionsCount  Placeholder = "{{OPTIONS_COUNT}}"
	PlaceholderTitleWords    Placeholder = "{{TITLE_WORDS}}"
	PlaceholderExisting      Placeholder = "{{EXISTING_QUESTIONS}}"
	PlaceholderContent       Placeholder = "{{CONTENT}}"
)

const responseShapeContract = `Respond with ONLY a JSON object in this exact shape, inside a ` + "```json" + ` fence:
{
  "title": "Quiz title (at most {{TITLE_WORDS}} words)",
  "description": "One or two sentences describing the quiz",
  "questions": [
    {
      "question_text": "The question?",
      "question_type": "multiple_choice",
      "options": [
        {"option_text": "First option", "is_correct": true},
        {"option_text": "Second option", "is_correct": false}
      ]
    }
  ]
}
Rules:
- exactly {{QUESTION_COUNT}} questions, each with exactly {{OPTIONS_COUNT}} options
- every question has exactly one option with "is_correct": true
- "question_type" is always "multiple_choice"
- no commentary outside the JSON`

const generateQuizTemplate = `You are an expert quiz author. Create a {{DIFFICULTY}} difficulty multiple-choice quiz about the following topic:

{{TOPIC}}

` + responseShapeContract

const moreQuestionsTemplate = `You are an expert quiz author. Write {{QUESTION_COUNT}} additional {{DIFFICULTY}} difficulty multiple-choice questions for an existing quiz about:

{{TOPIC}}

Do not repeat or closely paraphrase any of these existing questions:
{{EXISTING_QUESTIONS}}

` + responseShapeContract

const enhanceQuizTemplate = `You are an expert quiz editor. Improve the wording, clarity, and distractor quality of the following {{DIFFICULTY}} difficulty quiz without changing which option is correct or the number of questions and options:

{{EXISTING_QUESTIONS}}

` + responseShapeContract

const safetyCheckTemplate = `You are a content safety reviewer for a quiz platform. Judge whether the following user-supplied text is appropriate as a quiz topic (no hate, harassment, sexual content involving minors, or instructions for serious harm):

{{CONTENT}}

Respond with ONLY a JSON object: {"safe": true or false, "reason": "short reason"}`

// render substitutes every placeholder present in values into the template.
func render(template string, values map[Placeholder]string) string {
	out := template
	for placeholder, value := range values {
		out = strings.ReplaceAll(out, string(placeholder), value)
	}
	return out
}

func shapeValues(difficulty domain.Difficulty, questionCount, optionsCount, titleWords int) map[Placeholder]string {
	return map[Placeholder]string{
		PlaceholderDifficulty:    string(difficulty),
		PlaceholderQuestionCount: strconv.Itoa(questionCount),
		PlaceholderOptionsCount:  strconv.Itoa(optionsCount),
		PlaceholderTitleWords:    strconv.Itoa(titleWords),
	}
}

// BuildQuizPrompt produces the instruction text for a fresh generation.
func BuildQuizPrompt(req domain.GenerationRequest, titleWords int) string {
	values := shapeValues(req.Difficulty, req.QuestionCount, req.OptionsCount, titleWords)
	values[PlaceholderTopic] = strings.TrimSpace(req.Prompt)
	return render(generateQuizTemplate, values)
}

// BuildMoreQuestionsPrompt produces the instruction text for the
// "generate more" flow, carrying the existing questions as context.
func BuildMoreQuestionsPrompt(req domain.GenerationRequest, titleWords int, existingQuestions []string) string {
	values := shapeValues(req.Difficulty, req.QuestionCount, req.OptionsCount, titleWords)
	values[PlaceholderTopic] = strings.TrimSpace(req.Prompt)
	values[PlaceholderExisting] = "- " + strings.Join(existingQuestions, "\n- ")
	return render(moreQuestionsTemplate, values)
}

// BuildEnhancePrompt produces the instruction text for the "enhance" flow.
// The existing quiz is passed as its JSON rendering.
func BuildEnhancePrompt(req domain.GenerationRequest, titleWords int, quizJSON string) string {
	values := shapeValues(req.Difficulty, req.QuestionCount, req.OptionsCount, titleWords)
	values[PlaceholderExisting] = quizJSON
	return render(enhanceQuizTemplate, values)
}

// BuildSafetyPrompt produces the instruction text for a content-safety check.
func BuildSafetyPrompt(content string) string {
	return render(safetyCheckTemplate, map[Placeholder]string{
		PlaceholderContent: strings.TrimSpace(content),
	})
}

// surpriseTopics is the fixed list the "surprise me" selector draws from.
var surpriseTopics = []string{
	"World capitals",
	"Famous paintings and their painters",
	"The solar system",
	"Ancient Rome",
	"Olympic history",
	"Human anatomy",
	"Classic literature",
	"Inventions of the 20th century",
	"Ocean life",
	"World cuisines",
	"Programming languages",
	"Volcanoes and earthquakes",
	"The history of cinema",
	"Mythology around the world",
	"Famous explorers",
	"Musical instruments",
	"The periodic table",
	"Rivers of the world",
	"Space exploration",
	"Board games through history",
}

// SurpriseTopics picks a random topic plus a distinct fallback suggestion.
// The second pick is resampled until it differs from the first. The random
// source is injected for testability.
func SurpriseTopics(r *rand.Rand) (topic, fallback string) {
	topic = surpriseTopics[r.Intn(len(surpriseTopics))]
	fallback = topic
	for fallback == topic {
		fallback = surpriseTopics[r.Intn(len(surpriseTopics))]
	}
	return topic, fallback
}
