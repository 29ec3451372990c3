package ai

import (
	"strings"
	"unicode/utf8"
)

// A message longer than this is treated as a pasted job description even
// without recruiting vocabulary.
const jobDescriptionLengthHint = 500

var jobKeywords = []string{"job", "position", "role", "requirements"}

// LooksLikeJobDescription reports whether a chat message is probably a job
// posting rather than small talk: a link, recruiting vocabulary, or a wall of
// text. Heuristic only, used to decide when running the match analyzer is
// worth the extra model call.
func LooksLikeJobDescription(message string) bool {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return false
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, keyword := range jobKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return utf8.RuneCountInString(trimmed) > jobDescriptionLengthHint
}
