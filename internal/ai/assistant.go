package ai

import (
	"context"
	"fmt"
	"strings"
)

// Intent classifies what a visitor wants from the conversation.
type Intent string

const (
	IntentHire       Intent = "hire"
	IntentPartner    Intent = "partner"
	IntentFun        Intent = "fun"
	IntentNewsletter Intent = "newsletter"
)

// ParseIntent validates a raw intent value from an API request.
func ParseIntent(raw string) (Intent, error) {
	switch intent := Intent(strings.ToLower(strings.TrimSpace(raw))); intent {
	case IntentHire, IntentPartner, IntentFun, IntentNewsletter:
		return intent, nil
	default:
		return "", fmt.Errorf("unknown intent: %q", raw)
	}
}

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Profile describes the candidate this assistant represents. It is fixed
// configuration, not user data.
type Profile struct {
	Name       string
	Skills     []string
	ResumeText string
	Experience Experience
}

// Experience summarizes the candidate's work history for the analyzer prompt.
type Experience struct {
	Years int
	Roles []string
}

// MatchResult is the outcome of analyzing the profile against a job
// description.
type MatchResult struct {
	MatchingRate    float64  `json:"matchingRate" mapstructure:"matchingRate"`
	Analysis        string   `json:"analysis" mapstructure:"analysis"`
	Strengths       []string `json:"strengths" mapstructure:"strengths"`
	Gaps            []string `json:"gaps" mapstructure:"gaps"`
	Recommendations []string `json:"recommendations" mapstructure:"recommendations"`
}

// ContentGenerator produces a textual completion for a prompt. Both the
// responder and the analyzer depend only on this contract.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
