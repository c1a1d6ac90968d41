package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"os/exec"

	"github.com/lectureqa/lectureqa/internal/config"
)

// HealthHandler reports liveness and whether the transcription toolchain is
// actually usable (binaries on PATH, model file present, remote creds set).
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"ffmpeg":        checkBinary(h.cfg.Uploads.FFmpegBin),
		"whisper":       checkBinary(h.cfg.Whisper.Bin),
		"whisper_model": checkFile(h.cfg.Whisper.Model),
	}
	if h.cfg.RemoteEnabled() {
		checks["remote"] = "configured"
	} else {
		checks["remote"] = "not configured"
	}

	status := http.StatusOK
	// Local transcription is the default path; missing pieces mean not ready.
	for _, key := range []string{"ffmpeg", "whisper", "whisper_model"} {
		if checks[key] != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func checkBinary(bin string) string {
	if _, err := exec.LookPath(bin); err != nil {
		return "missing: " + bin
	}
	return "ok"
}

func checkFile(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "missing: " + path
	}
	return "ok"
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
