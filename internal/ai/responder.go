package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/knowledge"
)

const (
	// groundingLimit is how many knowledge documents back a reply.
	groundingLimit = 3
	// segueQuery fetches the single guidance document steering follow-up
	// suggestions, when one exists in the knowledge base.
	segueQuery = "segue guidelines prompt suggestions"

	// Long documents are quoted by their leading part only.
	groundingSnippetChars = 500
)

// Retriever supplies grounding documents for a conversation turn.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, category string) ([]knowledge.Summary, error)
}

// Responder generates conversation replies grounded in retrieved knowledge.
// Retrieval is best-effort enrichment: when it fails the reply is produced
// without grounding instead of failing the turn.
type Responder struct {
	generator ContentGenerator
	retriever Retriever
	profile   Profile
	logger    *zap.Logger
}

func NewResponder(generator ContentGenerator, retriever Retriever, profile Profile, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Responder{
		generator: generator,
		retriever: retriever,
		profile:   profile,
		logger:    logger,
	}
}

// Respond produces the assistant's next reply for the conversation history.
// When match is non-nil its verdict is woven into the prompt context.
func (r *Responder) Respond(ctx context.Context, intent Intent, history []Message, match *MatchResult) (string, error) {
	last := lastUserMessage(history)

	var grounding []knowledge.Summary
	if last != "" {
		docs, err := r.retriever.Retrieve(ctx, last, groundingLimit, "")
		if err != nil {
			r.logger.Warn("knowledge retrieval failed, replying without grounding", zap.Error(err))
		} else {
			grounding = docs
		}
	}

	var segue *knowledge.Summary
	if docs, err := r.retriever.Retrieve(ctx, segueQuery, 1, ""); err != nil {
		r.logger.Warn("segue guidance retrieval failed", zap.Error(err))
	} else if len(docs) > 0 {
		segue = &docs[0]
	}

	prompt := r.buildPrompt(intent, history, grounding, segue, match)

	r.logger.Debug("generating conversation reply",
		zap.String("intent", string(intent)),
		zap.Int("history", len(history)),
		zap.Int("grounding_docs", len(grounding)),
		zap.Bool("has_match_context", match != nil),
	)

	return r.generator.GenerateContent(ctx, prompt)
}

func (r *Responder) buildPrompt(intent Intent, history []Message, grounding []knowledge.Summary, segue *knowledge.Summary, match *MatchResult) string {
	var b strings.Builder

	name := r.profile.Name
	if name == "" {
		name = "the candidate"
	}

	fmt.Fprintf(&b, "You are %s's AI assistant. You're helping with: %s.\n", name, intent)

	switch intent {
	case IntentHire:
		fmt.Fprintf(&b, "Help potential employers understand %s's value and match with job opportunities.\n", name)
	case IntentPartner:
		b.WriteString("Help potential partners explore collaboration opportunities.\n")
	case IntentFun:
		b.WriteString("Be engaging, witty, and have fun conversations.\n")
	case IntentNewsletter:
		fmt.Fprintf(&b, "Help users subscribe and learn about %s's updates.\n", name)
	}

	b.WriteString("Use the knowledge base information provided to guide your responses. Be conversational, natural, and helpful.\n")

	if len(grounding) > 0 {
		b.WriteString("\nRELEVANT KNOWLEDGE BASE:\n")
		for _, doc := range grounding {
			fmt.Fprintf(&b, "- %s: %s\n", doc.Title, snippet(doc.Content))
		}
	}

	if segue != nil {
		fmt.Fprintf(&b, "\nGUIDANCE FOR SUGGESTING NEXT TOPICS:\n%s\n", snippet(segue.Content))
	}

	if match != nil {
		fmt.Fprintf(&b, "\nCONTEXT: Job match analysis shows a %.0f%% match. %s\n", match.MatchingRate, match.Analysis)
	}

	b.WriteString("\nCONVERSATION SO FAR:\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	b.WriteString("assistant:")

	return b.String()
}

func snippet(content string) string {
	if utf8.RuneCountInString(content) <= groundingSnippetChars {
		return content
	}
	return string([]rune(content)[:groundingSnippetChars])
}

func lastUserMessage(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return strings.TrimSpace(history[i].Content)
		}
	}
	return ""
}
