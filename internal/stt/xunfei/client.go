package xunfei

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lectureqa/lectureqa/internal/stt"
	"github.com/lectureqa/lectureqa/internal/transcribe"
)

// Config selects credentials and endpoints for the remote recognizer.
type Config struct {
	AppID     string
	APIKey    string
	SecretKey string
	// LegacyHost and RaasrHost override the production endpoints,
	// mainly for tests.
	LegacyHost string
	RaasrHost  string
	HTTPClient *http.Client
}

const (
	defaultLegacyHost = "https://raasr.xfyun.cn/api"
	defaultRaasrHost  = "https://raasr.xfyun.cn/v2"
)

// Client implements stt.Provider against the iFLYTEK service. When both an
// API key and a secret key are configured the current protocol is attempted
// first, falling back to the legacy protocol only if the current API path is
// reported as unavailable.
type Client struct {
	cfg    Config
	legacy *legacyClient
	raasr  *raasrClient
}

func New(cfg Config) (*Client, error) {
	if cfg.AppID == "" {
		return nil, errors.New("xunfei: app id is required")
	}
	if cfg.APIKey == "" && cfg.SecretKey == "" {
		return nil, errors.New("xunfei: an api key or secret key is required")
	}
	if cfg.LegacyHost == "" {
		cfg.LegacyHost = defaultLegacyHost
	}
	if cfg.RaasrHost == "" {
		cfg.RaasrHost = defaultRaasrHost
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	// The legacy protocol signs with exactly one value; the key wins when
	// both are configured.
	legacySecret := cfg.APIKey
	if legacySecret == "" {
		legacySecret = cfg.SecretKey
	}

	c := &Client{
		cfg:    cfg,
		legacy: newLegacyClient(cfg.AppID, legacySecret, cfg.LegacyHost, cfg.HTTPClient),
	}
	if cfg.APIKey != "" && cfg.SecretKey != "" {
		c.raasr = newRaasrClient(cfg.AppID, cfg.SecretKey, cfg.RaasrHost, cfg.HTTPClient)
	}
	return c, nil
}

func (c *Client) Name() string { return "xunfei" }

func (c *Client) Transcribe(ctx context.Context, req stt.Request) (*stt.Response, error) {
	audio, err := os.ReadFile(req.WavPath)
	if err != nil {
		return nil, &stt.PipelineError{
			Stage:   "upload",
			Message: "cannot read audio for upload",
			Err:     err,
		}
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = req.JobID + ".wav"
	}
	duration := req.Duration
	if duration <= 0 {
		duration = 200
	}

	events := newEventLog(req.OnProgress)

	if c.raasr != nil {
		text, err := c.raasr.Transcribe(ctx, audio, fileName, duration, events.emit)
		if err == nil {
			return &stt.Response{Text: text}, nil
		}
		if !errors.Is(err, ErrVariantUnsupported) {
			return nil, remoteError(err, events)
		}
		events.emit("current api unavailable, retrying with legacy protocol")
	}

	text, err := c.legacy.Transcribe(ctx, audio, fileName, duration, events.emit)
	if err != nil {
		return nil, remoteError(err, events)
	}
	return &stt.Response{Text: text}, nil
}

func remoteError(err error, events *eventLog) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return &stt.PipelineError{
			Stage:   "result",
			Message: "unrecognized recognition result",
			Log:     parseErr.Raw,
			Err:     err,
		}
	}
	return &stt.PipelineError{
		Stage:   "remote",
		Message: fmt.Sprintf("remote transcription failed: %v", err),
		Log:     events.tailText(),
		Err:     err,
	}
}

// eventLog turns protocol events into progress updates with a bounded tail.
type eventLog struct {
	onProgress transcribe.ProgressFunc
	tail       []string
}

func newEventLog(onProgress transcribe.ProgressFunc) *eventLog {
	return &eventLog{onProgress: onProgress}
}

func (e *eventLog) emit(msg string) {
	e.tail = append(e.tail, msg)
	if len(e.tail) > 80 {
		e.tail = e.tail[len(e.tail)-80:]
	}
	if e.onProgress != nil {
		e.onProgress(transcribe.ProgressUpdate{
			Message: msg,
			LogTail: append([]string(nil), e.tail...),
		})
	}
}

func (e *eventLog) tailText() string {
	out := ""
	for _, line := range e.tail {
		out += line + "\n"
	}
	return out
}
