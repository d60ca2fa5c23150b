package dto

// GenerateQuizRequest is the body for AI-backed quiz generation.
// Difficulty on the generated quiz always comes from this request, never
// from the model's reply.
type GenerateQuizRequest struct {
	Prompt        string `json:"prompt"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
	OptionsCount  int    `json:"options_count"`
	Title         string `json:"title,omitempty"`
}

// PrototypeQuizResponse is a generated quiz that has not been persisted.
// The composer UI needs the answer flags, so nothing is stripped here.
type PrototypeQuizResponse struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty"`
	Questions   []QuestionPayload `json:"questions"`
}

// GenerateMoreRequest asks for extra questions on an existing quiz.
type GenerateMoreRequest struct {
	QuestionCount int `json:"question_count"`
	OptionsCount  int `json:"options_count"`
}

// SurpriseTopicResponse carries a random topic and a distinct fallback.
type SurpriseTopicResponse struct {
	Topic    string `json:"topic"`
	Fallback string `json:"fallback"`
}

// SafetyCheckRequest asks whether free text is acceptable as quiz content.
type SafetyCheckRequest struct {
	Content string `json:"content"`
}

// SafetyCheckResponse is the moderation verdict.
type SafetyCheckResponse struct {
	Safe   bool   `json:"safe"`
	Reason string `json:"reason,omitempty"`
}
