// Package match pairs a lecture transcript with a question list by asking a
// chat model to quote the answer passages, using the candidate fallback
// chain underneath.
package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lectureqa/lectureqa/internal/llm"
)

// Response is the matching result surfaced to callers.
type Response struct {
	Model           string    `json:"model"`
	FinishReason    string    `json:"finish_reason"`
	Usage           llm.Usage `json:"usage"`
	CleanedText     string    `json:"cleaned_text"`
	DurationSeconds float64   `json:"duration"`
}

// Service wires the prompt builder to the model fallback chain.
type Service struct {
	fallback   *llm.Fallback
	candidates []string
	maxTokens  int
}

func NewService(fallback *llm.Fallback, candidates []string, maxTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Service{fallback: fallback, candidates: candidates, maxTokens: maxTokens}
}

// Match runs the transcript/questions prompt through the candidate chain.
// Failures come back as a single error (the first fatal one, or the
// aggregate over all retryable ones), never a stack of them.
func (s *Service) Match(ctx context.Context, transcript, questions string) (*Response, error) {
	transcript = strings.TrimSpace(transcript)
	questions = strings.TrimSpace(questions)
	if transcript == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	if questions == "" {
		return nil, fmt.Errorf("question list is empty")
	}

	start := time.Now()
	res, err := s.fallback.Chat(ctx, s.candidates, BuildPrompt(transcript, questions), s.maxTokens)
	if err != nil {
		return nil, err
	}

	return &Response{
		Model:           res.Model,
		FinishReason:    res.FinishReason,
		Usage:           res.Usage,
		CleanedText:     CleanAnswer(res.Content),
		DurationSeconds: time.Since(start).Seconds(),
	}, nil
}

// BuildPrompt lays out the question list before the transcript so the model
// reads the task before the long context.
func BuildPrompt(transcript, questions string) string {
	var b strings.Builder
	b.WriteString("You will receive a list of questions and the transcript of a lecture.\n")
	b.WriteString("For every question, find the passage of the transcript that answers it ")
	b.WriteString("and output the question followed by that passage, lightly cleaned up.\n")
	b.WriteString("If the transcript does not answer a question, state that explicitly.\n")
	b.WriteString("Answer in the language of the transcript. Output plain text only.\n\n")
	b.WriteString("Questions:\n")
	b.WriteString(questions)
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

// CleanAnswer strips a wrapping markdown code fence some models insist on
// adding, plus surrounding whitespace.
func CleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	// Drop the opening fence (with optional language tag) and a closing
	// fence if present.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
