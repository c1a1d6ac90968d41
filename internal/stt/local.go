package stt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lectureqa/lectureqa/internal/transcribe"
)

// Local transcribes with the whisper.cpp binary, streaming scraped progress
// to the caller and reading the transcript file the binary leaves behind.
type Local struct {
	whisper *transcribe.Whisper
}

func NewLocal(whisper *transcribe.Whisper) *Local {
	return &Local{whisper: whisper}
}

func (l *Local) Name() string { return "local-whisper" }

// CheckModel verifies the configured model file exists; used both as a
// submission preflight and before spending time on transcoding.
func (l *Local) CheckModel() error {
	path := l.whisper.ModelPath()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("whisper model not found at %s (download a ggml model into the models directory)", path)
	}
	return nil
}

func (l *Local) Transcribe(ctx context.Context, req Request) (*Response, error) {
	if err := l.CheckModel(); err != nil {
		return nil, &PipelineError{Stage: "model", Message: err.Error()}
	}

	outPrefix := filepath.Join(req.WorkDir, req.JobID)

	ok, log := l.whisper.Transcribe(ctx, req.WavPath, outPrefix, req.OnProgress)
	if !ok {
		return nil, &PipelineError{
			Stage:   "whisper",
			Message: "local recognition failed (is the whisper binary available?)",
			Log:     log,
		}
	}

	text := transcribe.ReadTranscript(req.WorkDir, req.JobID, outPrefix)
	return &Response{Text: text}, nil
}
