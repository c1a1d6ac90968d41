package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lectureqa/lectureqa/internal/jobs"
)

type JobHandler struct {
	store jobs.Store
}

func NewJobHandler(store jobs.Store) *JobHandler {
	return &JobHandler{store: store}
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, ok, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "job store unavailable"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}
