package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/engine"
	servermw "github.com/threadlens/threadlens/internal/server/middleware"
)

type scoutRequest struct {
	Topic     string `json:"topic"`
	Mode      string `json:"mode"`
	Community string `json:"community"`
	Limit     int    `json:"limit"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleScout runs a full scout pipeline synchronously. The pipeline bounds
// itself with its own wall-clock budget, so the only server-side limit is
// the write timeout, which must exceed that budget.
func (s *Server) handleScout(w http.ResponseWriter, r *http.Request) {
	var req scoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, r, http.StatusBadRequest, "topic is required")
		return
	}

	report, err := s.scout.Run(r.Context(), engine.Request{
		Topic:     strings.TrimSpace(req.Topic),
		Mode:      core.ParseMode(req.Mode),
		Community: strings.TrimSpace(req.Community),
		Limit:     req.Limit,
	})
	if err != nil {
		s.log.Error("scout run failed",
			zap.String("request_id", servermw.GetRequestID(r.Context())),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "scout run failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: servermw.GetRequestID(r.Context()),
	})
}
