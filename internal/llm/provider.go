// Package llm drives chat completions through an ordered list of model
// candidates, retrying by substitution when a model fails in a way another
// candidate could survive.
package llm

import (
	"fmt"
	"strings"
)

// Result is one successful chat completion.
type Result struct {
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Usage mirrors the provider's token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FailureClass tags a provider failure as worth trying the next candidate
// (transient) or fatal for the whole request (permanent). Classification
// happens once, at the provider boundary.
type FailureClass int

const (
	FailurePermanent FailureClass = iota
	FailureTransient
)

// ProviderError is a classified failure from one model attempt.
type ProviderError struct {
	Model      string
	Class      FailureClass
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model %s: http %d: %s", e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("model %s: %s", e.Model, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the next candidate should be attempted.
func (e *ProviderError) Retryable() bool { return e.Class == FailureTransient }

// classifyStatus maps HTTP codes where switching models can help: billing
// (402), permissions (403), unknown model/endpoint (404), rate limits (429)
// and provider-side 5xx.
func classifyStatus(code int) FailureClass {
	switch {
	case code == 402 || code == 403 || code == 404 || code == 429:
		return FailureTransient
	case code >= 500 && code <= 599:
		return FailureTransient
	default:
		return FailurePermanent
	}
}

// transientKeywords match free-text failures with the same meaning as the
// transient status codes.
var transientKeywords = []string{
	"insufficient",
	"quota",
	"rate",
	"limit",
	"exceeded",
	"payment",
	"billing",
	"credits",
	"too many requests",
	"no endpoints found",
	"model not found",
	"not found",
	"timeout",
	"timed out",
	"empty content",
	"inner error",
	"filtered",
	"refused",
}

func classifyMessage(msg string) FailureClass {
	lowered := strings.ToLower(msg)
	for _, kw := range transientKeywords {
		if strings.Contains(lowered, kw) {
			return FailureTransient
		}
	}
	return FailurePermanent
}
