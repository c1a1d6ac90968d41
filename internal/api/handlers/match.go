package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lectureqa/lectureqa/internal/match"
)

type MatchHandler struct {
	svc *match.Service
}

func NewMatchHandler(svc *match.Service) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type matchRequest struct {
	Transcript string `json:"transcript"`
	Questions  string `json:"questions"`
}

func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "matching is not configured (set OPENROUTER_API_KEY)"})
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Transcript) == "" || strings.TrimSpace(req.Questions) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transcript and questions are required"})
		return
	}

	res, err := h.svc.Match(r.Context(), req.Transcript, req.Questions)
	if err != nil {
		// Model-side failures, including the exhausted candidate chain.
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, res)
}
