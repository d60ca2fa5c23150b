package quizgen

import (
	"regexp"
	"strings"
)

var (
	taggedFencePattern   = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	untaggedFencePattern = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// ExtractJSON locates the likely JSON content in the model's raw reply.
// A ```json fence wins over an untagged fence; with no fence at all the
// whole input is the candidate. This step never fails and performs no
// semantic validation.
func ExtractJSON(text string) string {
	if m := taggedFencePattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := untaggedFencePattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
