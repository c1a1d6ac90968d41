// Package transcribe runs the local recognition pipeline: ffmpeg audio
// normalization followed by whisper.cpp, with progress scraped from the
// recognizer's log stream.
package transcribe

import (
	"context"

	"github.com/lectureqa/lectureqa/pkg/cmdrun"
)

// Transcoder normalizes arbitrary input audio to the 16 kHz mono 16-bit PCM
// contract the recognizers require.
type Transcoder struct {
	FFmpegBin string
}

func NewTranscoder(ffmpegBin string) *Transcoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Transcoder{FFmpegBin: ffmpegBin}
}

// ToWav16kMono converts src into a 16 kHz mono s16le wav at dst. It returns
// whether the conversion succeeded plus the captured ffmpeg output for
// diagnostics; a missing ffmpeg binary surfaces the same way as a failed run.
func (t *Transcoder) ToWav16kMono(ctx context.Context, src, dst string) (bool, string) {
	res := cmdrun.Run(ctx, cmdrun.Command{
		Path: t.FFmpegBin,
		Args: []string{
			"-hide_banner",
			"-nostdin",
			"-y",
			"-i", src,
			"-vn",
			"-ar", "16000",
			"-ac", "1",
			"-c:a", "pcm_s16le",
			dst,
		},
	})
	return res.ExitCode == 0, res.Output
}
