// Package conversation persists chat sessions so past conversations can be
// reviewed and exported later. Every turn is stored as a pair of messages
// under a caller-provided session id.
package conversation

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

// Message is a single stored conversation message. Assistant messages carry
// job-match context in Metadata when an analysis ran for that turn.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Session is a recorded conversation: one row per client session id, with
// messages ordered oldest first.
type Session struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// Store is the persistence boundary for recorded conversations.
type Store interface {
	// UpsertSession creates the session on first sight and updates the
	// intent when it changes mid-conversation.
	UpsertSession(ctx context.Context, sessionID, intent string) (*Session, error)
	AppendMessage(ctx context.Context, sessionID string, msg Message) error
	// FindSession returns the session with its messages, oldest first.
	FindSession(ctx context.Context, sessionID string) (*Session, error)
	// ListSessions returns sessions newest first, with their messages, plus
	// the total session count for the given intent filter.
	ListSessions(ctx context.Context, intent string, offset, limit int) ([]*Session, int, error)
}

// JobMatchRate extracts the matching rate from a session's stored messages.
// The second return value reports whether any message carries one.
func (s *Session) JobMatchRate() (float64, bool) {
	for _, msg := range s.Messages {
		if msg.Metadata == nil {
			continue
		}
		if rate, ok := msg.Metadata["matchingRate"].(float64); ok {
			return rate, true
		}
	}
	return 0, false
}

// Duration is the elapsed time between the first and last stored message.
func (s *Session) Duration() time.Duration {
	if len(s.Messages) < 2 {
		return 0
	}
	return s.Messages[len(s.Messages)-1].CreatedAt.Sub(s.Messages[0].CreatedAt)
}
