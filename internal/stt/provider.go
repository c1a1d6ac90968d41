// Package stt defines the speech-to-text backend boundary shared by the
// local whisper.cpp pipeline and the remote recognition service.
package stt

import (
	"context"
	"fmt"

	"github.com/lectureqa/lectureqa/internal/transcribe"
)

// Request holds the parameters for one transcription run. The audio has
// already been normalized to the 16 kHz mono PCM contract.
type Request struct {
	JobID    string
	WavPath  string
	WorkDir  string
	FileName string
	// Duration is the audio length in seconds when known; remote uploads
	// pass it along as an upload hint.
	Duration int
	// OnProgress receives progress/log updates while the backend runs.
	OnProgress transcribe.ProgressFunc
}

// Response is a completed transcription.
type Response struct {
	Text string
}

// Provider is the interface all transcription backends implement.
type Provider interface {
	Transcribe(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// PipelineError is a stage-aware transcription failure carrying the captured
// process or protocol log for the job record.
type PipelineError struct {
	Stage   string
	Message string
	Log     string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }
