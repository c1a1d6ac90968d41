package transcribe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProgressUpdate is one observation pushed to the job registry while the
// recognizer runs. Progress is nil until a percentage has been seen.
type ProgressUpdate struct {
	Progress *int
	Message  string
	LogTail  []string
}

// ProgressFunc receives updates as recognizer log lines arrive.
type ProgressFunc func(u ProgressUpdate)

var (
	// Explicit progress lines like "progress = 42%". A later explicit
	// value always replaces the current one, even if lower.
	explicitProgressRe = regexp.MustCompile(`(?i)progress\s*=\s*(\d+)%`)
	// Opportunistic match for any standalone "NN%" in the line. This path
	// only ever raises progress, so noisy lines cannot walk it backwards.
	anyPercentRe = regexp.MustCompile(`(\d{1,3})%`)
)

// progressScraper accumulates a bounded log tail and the current progress
// percentage from unstructured recognizer output.
type progressScraper struct {
	tail []string
	last *int

	maxTail int
}

func newProgressScraper() *progressScraper {
	return &progressScraper{maxTail: 80}
}

// feed consumes one raw log line. It returns the update to publish and
// false when the line is blank and nothing should be pushed.
func (p *progressScraper) feed(line string) (ProgressUpdate, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return ProgressUpdate{}, false
	}

	p.tail = append(p.tail, s)
	if len(p.tail) > p.maxTail {
		p.tail = p.tail[len(p.tail)-p.maxTail:]
	}

	if m := explicitProgressRe.FindStringSubmatch(s); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			p.last = &v
		}
	} else if m := anyPercentRe.FindStringSubmatch(s); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v >= 0 && v <= 100 {
			if p.last == nil || v > *p.last {
				p.last = &v
			}
		}
	}

	u := ProgressUpdate{LogTail: append([]string(nil), p.tail...)}
	if p.last != nil {
		v := *p.last
		u.Progress = &v
		u.Message = fmt.Sprintf("transcribing... %d%%", v)
	}
	return u, true
}
