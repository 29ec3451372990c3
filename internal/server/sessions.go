package server

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/conversation"
	"github.com/floai/flo-assistant/internal/utils"
)

const (
	defaultSessionsPage  = 1
	defaultSessionsLimit = 50

	// Listing previews are clipped so the admin overview stays small; the
	// export endpoint returns full message content.
	messagePreviewChars = 100
	exportPreviewChars  = 50

	// Export fetches everything in one page. The cap keeps a runaway table
	// from exhausting the handler.
	maxExportSessions = 10000
)

type sessionSummary struct {
	ID           string           `json:"id"`
	SessionID    string           `json:"sessionId"`
	Intent       string           `json:"intent"`
	MessageCount int              `json:"messageCount"`
	Duration     int              `json:"duration"`
	JobMatchRate *float64         `json:"jobMatchRate"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Messages     []messagePreview `json:"messages"`
}

type messagePreview struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type listSessionsResponse struct {
	Sessions   []sessionSummary `json:"sessions"`
	Pagination pagination       `json:"pagination"`
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (s *Server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultSessionsPage)
	limit := queryInt(r, "limit", defaultSessionsLimit)
	intent := r.URL.Query().Get("intent")

	sessions, total, err := s.conversations.List(r.Context(), intent, page, limit)
	if err != nil {
		s.logger.Error("listing conversation sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch sessions", err.Error())
		return
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, summarizeSession(session))
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{
		Sessions: summaries,
		Pagination: pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

type exportedSession struct {
	SessionID    string                 `json:"sessionId"`
	Intent       string                 `json:"intent"`
	CreatedAt    time.Time              `json:"createdAt"`
	MessageCount int                    `json:"messageCount"`
	Messages     []conversation.Message `json:"messages"`
}

func (s *Server) handleSessionsExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
		s.exportSingleSession(w, r, sessionID, format)
		return
	}

	sessions, _, err := s.conversations.List(r.Context(), "", 1, maxExportSessions)
	if err != nil {
		s.logger.Error("exporting conversation sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export conversations", err.Error())
		return
	}

	if format == "csv" {
		writeCSVHeader(w, "all-conversations.csv")

		writer := csv.NewWriter(w)
		_ = writer.Write([]string{"Session ID", "Intent", "Created At", "Message Count", "First Message", "Last Message"})
		for _, session := range sessions {
			first, last := "", ""
			if len(session.Messages) > 0 {
				first = utils.TruncateForLog(session.Messages[0].Content, exportPreviewChars)
				last = utils.TruncateForLog(session.Messages[len(session.Messages)-1].Content, exportPreviewChars)
			}
			_ = writer.Write([]string{
				session.SessionID,
				session.Intent,
				session.CreatedAt.Format(time.RFC3339),
				strconv.Itoa(len(session.Messages)),
				first,
				last,
			})
		}
		writer.Flush()
		return
	}

	exported := make([]exportedSession, 0, len(sessions))
	for _, session := range sessions {
		exported = append(exported, exportSession(session))
	}

	writeJSON(w, http.StatusOK, map[string][]exportedSession{"conversations": exported})
}

func (s *Server) exportSingleSession(w http.ResponseWriter, r *http.Request, sessionID, format string) {
	session, err := s.conversations.Find(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found", "")
			return
		}
		s.logger.Error("exporting conversation session", zap.Error(err), zap.String("session_id", sessionID))
		writeError(w, http.StatusInternalServerError, "failed to export conversation", err.Error())
		return
	}

	if format == "csv" {
		writeCSVHeader(w, fmt.Sprintf("conversation-%s.csv", sessionID))

		writer := csv.NewWriter(w)
		_ = writer.Write([]string{"Role", "Content", "Created At"})
		for _, msg := range session.Messages {
			_ = writer.Write([]string{msg.Role, msg.Content, msg.CreatedAt.Format(time.RFC3339)})
		}
		writer.Flush()
		return
	}

	writeJSON(w, http.StatusOK, exportSession(session))
}

func summarizeSession(session *conversation.Session) sessionSummary {
	summary := sessionSummary{
		ID:           session.ID,
		SessionID:    session.SessionID,
		Intent:       session.Intent,
		MessageCount: len(session.Messages),
		Duration:     int(session.Duration().Seconds()),
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		Messages:     make([]messagePreview, 0, len(session.Messages)),
	}

	if rate, ok := session.JobMatchRate(); ok {
		summary.JobMatchRate = &rate
	}

	for _, msg := range session.Messages {
		summary.Messages = append(summary.Messages, messagePreview{
			Role:      msg.Role,
			Content:   utils.TruncateForLog(msg.Content, messagePreviewChars),
			CreatedAt: msg.CreatedAt,
		})
	}

	return summary
}

func exportSession(session *conversation.Session) exportedSession {
	return exportedSession{
		SessionID:    session.SessionID,
		Intent:       session.Intent,
		CreatedAt:    session.CreatedAt,
		MessageCount: len(session.Messages),
		Messages:     session.Messages,
	}
}

func writeCSVHeader(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}

	return value
}
