package quizgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_TaggedFence(t *testing.T) {
	text := "Here is your quiz:\n```json\n{\"title\":\"X\",\"questions\":[]}\n```\nEnjoy!"

	got := ExtractJSON(text)

	assert.Equal(t, `{"title":"X","questions":[]}`, got)
}

func TestExtractJSON_TaggedFenceWinsOverUntagged(t *testing.T) {
	text := "```\nnot the payload\n```\nsome prose\n```json\n{\"title\":\"X\"}\n```"

	got := ExtractJSON(text)

	assert.Equal(t, `{"title":"X"}`, got)
}

func TestExtractJSON_UntaggedFence(t *testing.T) {
	text := "Sure!\n```\n{\"title\":\"Y\"}\n```"

	got := ExtractJSON(text)

	assert.Equal(t, `{"title":"Y"}`, got)
}

func TestExtractJSON_NoFenceFallsBackToWholeText(t *testing.T) {
	text := `  {"title":"Z"}  `

	got := ExtractJSON(text)

	assert.Equal(t, `{"title":"Z"}`, got)
}

// Extraction followed by parse must yield the same tree as parsing the
// fence interior directly.
func TestExtractJSON_FenceExtractionIdempotence(t *testing.T) {
	interior := `{"title":"Capitals","questions":[{"question_text":"Capital of France?","options":[{"option_text":"Paris","is_correct":true},{"option_text":"Lyon","is_correct":false}]}]}`
	wrapped := "Model says:\n```json\n" + interior + "\n```\nDone."

	var fromWrapped, fromInterior interface{}
	require.NoError(t, json.Unmarshal([]byte(ExtractJSON(wrapped)), &fromWrapped))
	require.NoError(t, json.Unmarshal([]byte(interior), &fromInterior))

	assert.Equal(t, fromInterior, fromWrapped)
}
