package jobs

import "time"

// Status is the lifecycle state of a transcription job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Terminal reports whether a job in this status will never change again.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// MaxLogTail bounds the number of recent log lines kept on a job.
const MaxLogTail = 80

// Job is one tracked unit of work from audio upload to transcript or failure.
// Jobs are created on submission, mutated only by their owning worker, and
// kept for the lifetime of the process.
type Job struct {
	ID                 string     `json:"job_id"`
	Status             Status     `json:"status"`
	Message            string     `json:"message"`
	Progress           *int       `json:"progress,omitempty"`
	Text               string     `json:"text"`
	LogTail            []string   `json:"log_tail"`
	Log                string     `json:"log,omitempty"`
	OriginalFilename   string     `json:"original_filename,omitempty"`
	CreatedAt          time.Time  `json:"created_at,omitzero"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	TranscribeDuration float64    `json:"transcribe_duration,omitempty"`
}

// Update is a partial set of job fields merged into the stored job by
// Store.Upsert. Zero-valued fields are left untouched; pointer fields
// distinguish "absent" from an explicit zero.
type Update struct {
	Status             Status
	Message            string
	Progress           *int
	Text               *string
	LogTail            []string
	Log                string
	OriginalFilename   string
	CreatedAt          time.Time
	StartedAt          *time.Time
	FinishedAt         *time.Time
	TranscribeDuration *float64
}

// apply merges u into j, enforcing the status machine: queued -> running ->
// done|error, with no transition out of a terminal state. A disallowed
// status change is dropped while the rest of the update still applies.
func (j *Job) apply(u Update) {
	if u.Status != "" && canTransition(j.Status, u.Status) {
		j.Status = u.Status
	}
	if u.Message != "" {
		j.Message = u.Message
	}
	if u.Progress != nil {
		v := *u.Progress
		j.Progress = &v
	}
	if u.Text != nil {
		j.Text = *u.Text
	}
	if u.LogTail != nil {
		tail := u.LogTail
		if len(tail) > MaxLogTail {
			tail = tail[len(tail)-MaxLogTail:]
		}
		j.LogTail = append([]string(nil), tail...)
	}
	if u.Log != "" {
		j.Log = u.Log
	}
	if u.OriginalFilename != "" {
		j.OriginalFilename = u.OriginalFilename
	}
	if !u.CreatedAt.IsZero() {
		j.CreatedAt = u.CreatedAt
	}
	if u.StartedAt != nil {
		v := *u.StartedAt
		j.StartedAt = &v
	}
	if u.FinishedAt != nil {
		v := *u.FinishedAt
		j.FinishedAt = &v
	}
	if u.TranscribeDuration != nil {
		j.TranscribeDuration = *u.TranscribeDuration
	}
}

func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case "":
		return true
	case StatusQueued:
		return to == StatusRunning || to == StatusDone || to == StatusError
	case StatusRunning:
		return to == StatusDone || to == StatusError
	default:
		// done and error are terminal
		return false
	}
}

// snapshot returns a copy safe to hand to readers.
func (j Job) snapshot() Job {
	out := j
	if j.Progress != nil {
		v := *j.Progress
		out.Progress = &v
	}
	if j.StartedAt != nil {
		v := *j.StartedAt
		out.StartedAt = &v
	}
	if j.FinishedAt != nil {
		v := *j.FinishedAt
		out.FinishedAt = &v
	}
	out.LogTail = append([]string(nil), j.LogTail...)
	return out
}
