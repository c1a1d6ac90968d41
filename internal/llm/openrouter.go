package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Caller performs a single chat completion against one model. The fallback
// chain never retries the same model; it only substitutes candidates.
type Caller interface {
	Call(ctx context.Context, model, prompt string, maxTokens int) (*Result, error)
	Name() string
}

// OpenRouter calls an OpenAI-compatible chat endpoint and classifies every
// failure before returning it.
type OpenRouter struct {
	client *openai.Client
}

func NewOpenRouter(apiKey, baseURL string) *OpenRouter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	return &OpenRouter{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenRouter) Name() string { return "openrouter" }

func (p *OpenRouter) Call(ctx context.Context, model, prompt string, maxTokens int) (*Result, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, p.classify(model, err)
	}

	// A 200 with no usable message still counts as a failure: free-tier
	// models have been seen returning an empty (or filtered) choice body
	// instead of an error status.
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{
			Model:   model,
			Class:   FailureTransient,
			Message: "response contained no choices (empty content)",
		}
	}
	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return nil, &ProviderError{
			Model:   model,
			Class:   FailureTransient,
			Message: "model returned empty content (possibly filtered or refused)",
		}
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}
	return &Result{
		Model:        respModel,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// classify turns transport/API errors into a tagged ProviderError exactly
// once, so callers never re-parse error strings.
func (p *OpenRouter) classify(model string, err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		class := classifyStatus(apiErr.HTTPStatusCode)
		if class == FailurePermanent {
			class = classifyMessage(apiErr.Message)
		}
		return &ProviderError{
			Model:      model,
			Class:      class,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &ProviderError{
		Model:   model,
		Class:   classifyMessage(err.Error()),
		Message: err.Error(),
		Err:     err,
	}
}
