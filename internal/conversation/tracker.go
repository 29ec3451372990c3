package conversation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/ai"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultPageSize bounds session listings when callers pass no limit.
	DefaultPageSize = 50
)

// Tracker records conversation turns and serves the recorded history. It owns
// no conversational logic; the chat layer decides what to record.
type Tracker struct {
	store  Store
	logger *zap.Logger
}

func NewTracker(store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tracker{store: store, logger: logger}
}

// Record persists one chat turn: the user message and the assistant reply,
// with job-match context attached to the reply when an analysis ran. The
// session is created on first sight; a changed intent updates the session.
func (t *Tracker) Record(ctx context.Context, sessionID string, intent ai.Intent, userMessage, reply string, match *ai.MatchResult) error {
	if _, err := t.store.UpsertSession(ctx, sessionID, string(intent)); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if err := t.store.AppendMessage(ctx, sessionID, Message{Role: RoleUser, Content: userMessage}); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}

	var metadata map[string]any
	if match != nil {
		metadata = map[string]any{
			"matchingRate":    match.MatchingRate,
			"analysis":        match.Analysis,
			"strengths":       match.Strengths,
			"gaps":            match.Gaps,
			"recommendations": match.Recommendations,
		}
	}

	if err := t.store.AppendMessage(ctx, sessionID, Message{Role: RoleAssistant, Content: reply, Metadata: metadata}); err != nil {
		return fmt.Errorf("append assistant message: %w", err)
	}

	t.logger.Debug("recorded conversation turn",
		zap.String("session_id", sessionID),
		zap.String("intent", string(intent)),
		zap.Bool("with_match", match != nil),
	)

	return nil
}

// List returns one page of recorded sessions, newest first, plus the total
// session count for the intent filter. Page numbering starts at 1.
func (t *Tracker) List(ctx context.Context, intent string, page, limit int) ([]*Session, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	return t.store.ListSessions(ctx, intent, (page-1)*limit, limit)
}

// Find returns a single recorded session. Returns ErrNotFound when the
// session id is unknown.
func (t *Tracker) Find(ctx context.Context, sessionID string) (*Session, error) {
	return t.store.FindSession(ctx, sessionID)
}
