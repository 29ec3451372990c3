package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/floai/flo-assistant/internal/knowledge"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(body, v)
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleKnowledgeList(w, r)
	case http.MethodPost:
		s.handleKnowledgeStore(w, r)
	case http.MethodPut:
		s.handleKnowledgeUpdate(w, r)
	case http.MethodDelete:
		s.handleKnowledgeDelete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

type listKnowledgeResponse struct {
	Documents []knowledge.Summary `json:"documents"`
}

func (s *Server) handleKnowledgeList(w http.ResponseWriter, r *http.Request) {
	documents, err := s.curator.ListAll(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to fetch knowledge base")
		return
	}

	writeJSON(w, http.StatusOK, listKnowledgeResponse{Documents: documents})
}

type storeKnowledgeRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category string         `json:"category"`
	Metadata map[string]any `json:"metadata"`
}

type knowledgeDocumentResponse struct {
	Success  bool              `json:"success"`
	Document knowledge.Summary `json:"document"`
}

func (s *Server) handleKnowledgeStore(w http.ResponseWriter, r *http.Request) {
	var req storeKnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "title and content are required", "")
		return
	}

	doc, err := s.curator.Store(r.Context(), req.Title, req.Content, req.Category, req.Metadata)
	if err != nil {
		s.writeDomainError(w, err, "failed to store document")
		return
	}

	writeJSON(w, http.StatusCreated, knowledgeDocumentResponse{Success: true, Document: doc.Summarize()})
}

type updateKnowledgeRequest struct {
	ID       string  `json:"id"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (s *Server) handleKnowledgeUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateKnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "id is required", "")
		return
	}

	doc, err := s.curator.Update(r.Context(), req.ID, req.Title, req.Content, req.Category)
	if err != nil {
		s.writeDomainError(w, err, "failed to update document")
		return
	}

	writeJSON(w, http.StatusOK, knowledgeDocumentResponse{Success: true, Document: doc.Summarize()})
}

type deleteKnowledgeRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleKnowledgeDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteKnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "id is required", "")
		return
	}

	if err := s.curator.Delete(r.Context(), req.ID); err != nil {
		s.writeDomainError(w, err, "failed to delete document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
