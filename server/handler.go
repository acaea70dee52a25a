package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/collegegpt/ragserver/pkg/pipeline"
)

type chatRequest struct {
	Question string `json:"question"`
	UserName string `json:"user_name,omitempty"`
}

type chatResponse struct {
	Answer        string `json:"answer"`
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "API is running",
		"version": "1.0.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.config.Pipeline().Status()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",

		"initialized": status.Initialized,
		"available":   status.Available,
		"rebuilding":  status.Rebuilding,

		"embedding_model": s.config.EmbedModel,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	identity := identityFromContext(r.Context())

	question := req.Question

	// Identity personalizes the question and greeting only; retrieval and
	// generation do not depend on it.
	name := req.UserName

	if identity != nil {
		if name == "" {
			name = identity.GivenName
		}

		if name != "" {
			question = fmt.Sprintf("The user's name is %s. Address them personally. Question: %s", name, req.Question)
		}
	}

	answer, err := s.config.Pipeline().Answer(r.Context(), question)

	if err != nil {
		s.logger.WithError(err).Error("chat request failed")

		writeError(w, statusFor(err), err.Error())
		return
	}

	if identity != nil && name != "" && !strings.HasPrefix(answer, "Hello") {
		answer = fmt.Sprintf("Hello %s! %s", name, answer)
	}

	resp := chatResponse{
		Answer:        answer,
		Authenticated: identity != nil,
	}

	if identity != nil {
		resp.UserID = identity.Subject
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.config.Pipeline().Rebuild(r.Context())

	if err != nil {
		s.logger.WithError(err).Error("data refresh failed")

		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Data refresh completed successfully",

		"documents_processed": result.DocumentsProcessed,
		"chunks_created":      result.ChunksCreated,
		"items_indexed":       result.ItemsIndexed,
		"objects_skipped":     result.ObjectsSkipped,
		"objects_failed":      result.ObjectsFailed,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrRebuildInProgress):
		return http.StatusConflict

	case errors.Is(err, pipeline.ErrNotInitialized), errors.Is(err, pipeline.ErrUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
