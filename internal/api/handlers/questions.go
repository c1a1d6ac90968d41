package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"

	"github.com/lectureqa/lectureqa/pkg/textextract"
)

// QuestionsHandler turns an uploaded question document into plain text the
// client can review before sending it to the matcher.
type QuestionsHandler struct {
	maxBytes int64
}

func NewQuestionsHandler(maxUploadMB int) *QuestionsHandler {
	return &QuestionsHandler{maxBytes: int64(maxUploadMB) << 20}
}

func (h *QuestionsHandler) Extract(w http.ResponseWriter, r *http.Request) {
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

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read upload"})
		return
	}

	fileType := filepath.Ext(header.Filename)
	if fileType == "" {
		fileType = header.Header.Get("Content-Type")
	}

	extracted, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), fileType)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":   extracted.Content,
		"pages":  extracted.Pages,
		"format": extracted.Format,
	})
}
