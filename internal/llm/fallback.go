package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoCandidates is returned when the resolved candidate list is empty.
var ErrNoCandidates = errors.New("no model candidates configured")

// attemptMessageLimit caps per-model failure messages in the aggregate.
const attemptMessageLimit = 300

// AttemptFailure records one failed candidate for the aggregate error.
type AttemptFailure struct {
	Model   string
	Message string
}

// AggregateError reports that every candidate failed, keeping each model's
// failure so misnamed models and exhausted quotas are diagnosable.
type AggregateError struct {
	Attempts []AttemptFailure
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.Model, a.Message)
	}
	return "all model candidates failed: " + strings.Join(parts, "; ")
}

// Fallback runs a prompt through ranked model candidates: a transient
// failure advances to the next candidate, a permanent one aborts
// immediately, and the same model is never retried.
type Fallback struct {
	caller Caller
}

func NewFallback(caller Caller) *Fallback {
	return &Fallback{caller: caller}
}

// Chat returns the first successful result. On total failure it returns
// either the single permanent failure or an AggregateError covering every
// transient one.
func (f *Fallback) Chat(ctx context.Context, candidates []string, prompt string, maxTokens int) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	var attempts []AttemptFailure
	for _, model := range candidates {
		res, err := f.caller.Call(ctx, model, prompt, maxTokens)
		if err == nil {
			return res, nil
		}

		slog.Warn("model candidate failed", "provider", f.caller.Name(), "model", model, "error", err)

		var provErr *ProviderError
		if !errors.As(err, &provErr) || !provErr.Retryable() {
			return nil, err
		}
		attempts = append(attempts, AttemptFailure{
			Model:   model,
			Message: truncateMessage(err.Error()),
		})
	}
	return nil, &AggregateError{Attempts: attempts}
}

func truncateMessage(msg string) string {
	if len(msg) > attemptMessageLimit {
		return msg[:attemptMessageLimit] + "..."
	}
	return msg
}
