// Package server exposes the assistant over HTTP: a conversational chat
// endpoint and the knowledge administration surface. It owns none of the
// domain logic; handlers translate requests into curator/responder calls and
// map domain errors onto status codes.
package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/ai"
	"github.com/floai/flo-assistant/internal/conversation"
	"github.com/floai/flo-assistant/internal/knowledge"
)

// Curator is the knowledge administration boundary consumed by the handlers.
type Curator interface {
	Store(ctx context.Context, title, content, category string, metadata map[string]any) (*knowledge.Document, error)
	Update(ctx context.Context, id string, title, content, category *string) (*knowledge.Document, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]knowledge.Summary, error)
}

// Responder produces the assistant's reply for a conversation turn.
type Responder interface {
	Respond(ctx context.Context, intent ai.Intent, history []ai.Message, match *ai.MatchResult) (string, error)
}

// Analyzer evaluates the candidate profile against a job description.
type Analyzer interface {
	Evaluate(ctx context.Context, jobDescription string) (*ai.MatchResult, error)
}

// Conversations records chat turns and serves the recorded history for the
// admin endpoints.
type Conversations interface {
	Record(ctx context.Context, sessionID string, intent ai.Intent, userMessage, reply string, match *ai.MatchResult) error
	List(ctx context.Context, intent string, page, limit int) ([]*conversation.Session, int, error)
	Find(ctx context.Context, sessionID string) (*conversation.Session, error)
}

// Server wires the HTTP surface. The analyzer may be nil, in which case chat
// skips job-match analysis entirely.
type Server struct {
	curator       Curator
	responder     Responder
	analyzer      Analyzer
	conversations Conversations
	logger        *zap.Logger
}

func New(curator Curator, responder Responder, analyzer Analyzer, conversations Conversations, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		curator:       curator,
		responder:     responder,
		analyzer:      analyzer,
		conversations: conversations,
		logger:        logger,
	}
}

// Handler returns the routed HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("/api/knowledge", s.handleKnowledge)
	mux.HandleFunc("GET /api/sessions", s.handleSessionsList)
	mux.HandleFunc("GET /api/sessions/export", s.handleSessionsExport)
	return mux
}
