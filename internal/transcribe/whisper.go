package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lectureqa/lectureqa/pkg/cmdrun"
)

// WhisperConfig configures the local whisper.cpp invocation.
type WhisperConfig struct {
	Bin      string
	Model    string
	Language string
	Threads  int
}

// Whisper runs the local whisper.cpp binary and scrapes completion
// percentages from its combined output stream.
type Whisper struct {
	cfg WhisperConfig
}

func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.Bin == "" {
		cfg.Bin = "whisper-cli"
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	return &Whisper{cfg: cfg}
}

// ModelPath exposes the configured model file for preflight checks.
func (w *Whisper) ModelPath() string { return w.cfg.Model }

// Transcribe runs whisper.cpp on wavPath, writing the transcript next to
// outPrefix. Every non-empty output line is folded into a bounded log tail
// and pushed through onProgress together with the scraped percentage.
// Returns success plus the captured process log.
func (w *Whisper) Transcribe(ctx context.Context, wavPath, outPrefix string, onProgress ProgressFunc) (bool, string) {
	args := []string{
		"-t", strconv.Itoa(w.cfg.Threads),
		"-m", w.cfg.Model,
	}
	if w.cfg.Language != "" {
		args = append(args, "-l", w.cfg.Language)
	}
	args = append(args,
		"-f", wavPath,
		"-pp",
		"-otxt",
		"-of", outPrefix,
	)

	scraper := newProgressScraper()
	res := cmdrun.Run(ctx, cmdrun.Command{
		Path: w.cfg.Bin,
		Args: args,
		OnLine: func(line string) {
			if u, ok := scraper.feed(line); ok && onProgress != nil {
				onProgress(u)
			}
		},
	})
	return res.ExitCode == 0, res.Output
}

// ReadTranscript loads the transcript whisper.cpp wrote for a job. Some
// builds name the file <workDir>/<jobID>.txt, others append ".txt" to the
// output prefix; both are tried. Returns "" when neither exists.
func ReadTranscript(workDir, jobID, outPrefix string) string {
	candidates := []string{
		filepath.Join(workDir, jobID+".txt"),
		outPrefix + ".txt",
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data)
		}
	}
	return ""
}
