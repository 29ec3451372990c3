package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/ai"
)

type chatRequest struct {
	SessionID string       `json:"sessionId"`
	Intent    string       `json:"intent"`
	Message   string       `json:"message"`
	History   []ai.Message `json:"history"`
}

type chatResponse struct {
	Response string          `json:"response"`
	Match    *ai.MatchResult `json:"match,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	intent, err := ai.ParseIntent(req.Intent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid intent", err.Error())
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	history := req.History
	if len(history) == 0 || history[len(history)-1].Content != req.Message {
		history = append(history, ai.Message{Role: "user", Content: req.Message})
	}

	// Job-match analysis is best-effort enrichment for hiring conversations:
	// a failed analysis still produces a reply, just without match context.
	var match *ai.MatchResult
	if s.analyzer != nil && intent == ai.IntentHire && ai.LooksLikeJobDescription(message) {
		result, err := s.analyzer.Evaluate(r.Context(), message)
		if err != nil {
			s.logger.Warn("job match analysis failed, continuing without it", zap.Error(err))
		} else {
			match = result
			s.logger.Info("analyzed job match", zap.Float64("matching_rate", match.MatchingRate))
		}
	}

	reply, err := s.responder.Respond(r.Context(), intent, history, match)
	if err != nil {
		s.logger.Error("generating conversation reply", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process message", err.Error())
		return
	}

	// Recording is best-effort for the same reason analysis is: a storage
	// hiccup must not cost the visitor their reply. Clients without a
	// session id stay unrecorded.
	if sessionID := strings.TrimSpace(req.SessionID); s.conversations != nil && sessionID != "" {
		if err := s.conversations.Record(r.Context(), sessionID, intent, message, reply, match); err != nil {
			s.logger.Warn("recording conversation turn failed",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, Match: match})
}
