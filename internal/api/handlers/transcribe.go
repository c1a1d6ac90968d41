package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lectureqa/lectureqa/internal/jobs"
	"github.com/lectureqa/lectureqa/internal/worker"
)

// TranscribeHandler accepts audio uploads and hands them to the bounded
// background runner. When every worker slot is busy the upload is refused
// with 503 instead of queueing unboundedly.
type TranscribeHandler struct {
	store     jobs.Store
	runner    *jobs.Runner
	worker    *worker.Worker
	uploadDir string
	maxBytes  int64
}

func NewTranscribeHandler(store jobs.Store, runner *jobs.Runner, wk *worker.Worker, uploadDir string, maxUploadMB int) *TranscribeHandler {
	return &TranscribeHandler{
		store:     store,
		runner:    runner,
		worker:    wk,
		uploadDir: uploadDir,
		maxBytes:  int64(maxUploadMB) << 20,
	}
}

func (h *TranscribeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form (or upload too large)"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	backend := r.FormValue("backend")
	if _, ok := h.worker.Backend(backend); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown backend %q", backend)})
		return
	}

	jobID := uuid.NewString()
	srcPath, err := h.saveUpload(file, header.Filename, jobID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not store upload"})
		return
	}

	h.upsert(r.Context(), jobID, jobs.Update{
		Status:           jobs.StatusQueued,
		Message:          "queued",
		OriginalFilename: header.Filename,
		CreatedAt:        time.Now(),
	})

	accepted := h.runner.TryLaunch(jobID, func(ctx context.Context) {
		h.worker.Run(ctx, jobID, srcPath, backend)
	})
	if !accepted {
		os.Remove(srcPath)
		h.upsert(r.Context(), jobID, jobs.Update{
			Status:  jobs.StatusError,
			Message: "server busy, try again later",
		})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server busy, try again later"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID, "status": string(jobs.StatusQueued)})
}

func (h *TranscribeHandler) saveUpload(src io.Reader, originalName, jobID string) (string, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(h.uploadDir, jobID+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (h *TranscribeHandler) upsert(ctx context.Context, jobID string, u jobs.Update) {
	_ = h.store.Upsert(ctx, jobID, u)
}
