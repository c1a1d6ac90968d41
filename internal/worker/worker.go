// Package worker drives one submitted job through transcode, transcription
// and the job registry. Every failure becomes a terminal job error with a
// human-readable message; nothing escapes to crash the service.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lectureqa/lectureqa/internal/jobs"
	"github.com/lectureqa/lectureqa/internal/stt"
	"github.com/lectureqa/lectureqa/internal/transcribe"
)

// Backend names accepted on submission.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Worker owns the per-job pipeline. One Worker serves all jobs; per-job
// state lives in the registry.
type Worker struct {
	store      jobs.Store
	transcoder *transcribe.Transcoder
	backends   map[string]stt.Provider
	workDir    string
	log        *slog.Logger
}

func New(store jobs.Store, transcoder *transcribe.Transcoder, backends map[string]stt.Provider, workDir string) *Worker {
	return &Worker{
		store:      store,
		transcoder: transcoder,
		backends:   backends,
		workDir:    workDir,
		log:        slog.With("component", "worker"),
	}
}

// Backend returns the provider registered under name, defaulting to local.
func (w *Worker) Backend(name string) (stt.Provider, bool) {
	if name == "" {
		name = BackendLocal
	}
	p, ok := w.backends[name]
	return p, ok
}

// Run processes one job to a terminal state. Intended to be launched
// through jobs.Runner.
func (w *Worker) Run(ctx context.Context, jobID, srcPath, backend string) {
	start := time.Now()
	w.upsert(ctx, jobID, jobs.Update{
		Status:    jobs.StatusRunning,
		Message:   "processing audio...",
		StartedAt: &start,
	})

	provider, ok := w.Backend(backend)
	if !ok {
		w.fail(ctx, jobID, fmt.Sprintf("unknown transcription backend %q", backend), "")
		return
	}

	wavPath := filepath.Join(w.workDir, jobID+".wav")
	zero := 0
	w.upsert(ctx, jobID, jobs.Update{Message: "transcoding (ffmpeg)...", Progress: &zero})

	ok, ffmpegLog := w.transcoder.ToWav16kMono(ctx, srcPath, wavPath)
	if !ok {
		w.fail(ctx, jobID, "ffmpeg conversion failed (is ffmpeg installed?)", ffmpegLog)
		return
	}

	w.upsert(ctx, jobID, jobs.Update{
		Message:  fmt.Sprintf("starting transcription (%s)...", provider.Name()),
		Progress: &zero,
	})

	transcribeStart := time.Now()
	resp, err := provider.Transcribe(ctx, stt.Request{
		JobID:   jobID,
		WavPath: wavPath,
		WorkDir: w.workDir,
		OnProgress: func(u transcribe.ProgressUpdate) {
			w.upsert(ctx, jobID, jobs.Update{
				Progress: u.Progress,
				Message:  u.Message,
				LogTail:  u.LogTail,
			})
		},
	})
	if err != nil {
		msg, log := describeFailure(err)
		w.fail(ctx, jobID, msg, log)
		return
	}

	finished := time.Now()
	duration := finished.Sub(transcribeStart).Seconds()
	w.upsert(ctx, jobID, jobs.Update{
		Status:             jobs.StatusDone,
		Message:            "done",
		Text:               &resp.Text,
		FinishedAt:         &finished,
		TranscribeDuration: &duration,
	})
	w.log.Info("job finished", "job_id", jobID, "backend", provider.Name(), "seconds", duration)
}

// describeFailure splits a backend error into the user-facing message and
// the diagnostic log to attach to the job.
func describeFailure(err error) (msg, log string) {
	var pipeErr *stt.PipelineError
	if errors.As(err, &pipeErr) {
		return pipeErr.Message, pipeErr.Log
	}
	return fmt.Sprintf("transcription failed: %v", err), ""
}

func (w *Worker) fail(ctx context.Context, jobID, message, log string) {
	now := time.Now()
	w.upsert(ctx, jobID, jobs.Update{
		Status:     jobs.StatusError,
		Message:    message,
		Log:        log,
		FinishedAt: &now,
	})
	w.log.Warn("job failed", "job_id", jobID, "message", message)
}

func (w *Worker) upsert(ctx context.Context, jobID string, u jobs.Update) {
	if err := w.store.Upsert(ctx, jobID, u); err != nil {
		w.log.Error("job store update failed", "job_id", jobID, "error", err)
	}
}
