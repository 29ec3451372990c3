package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/knowledge"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// writeDomainError maps core error taxonomy onto status codes: a missing
// document is the caller's mistake (404), everything else is a server-side
// failure (500).
func (s *Server) writeDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, knowledge.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found", "")
	default:
		var providerErr *knowledge.ProviderError
		if errors.As(err, &providerErr) {
			s.logger.Error("embedding provider failure", zap.Error(err))
			writeError(w, http.StatusInternalServerError, message, "embedding provider failed")
			return
		}

		s.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err.Error())
	}
}
