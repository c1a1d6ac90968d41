package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, handler http.HandlerFunc) *OpenRouter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenRouter("test-key", srv.URL)
}

func TestOpenRouterCallParsesSuccessfulResponse(t *testing.T) {
	p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"model": "deepseek/deepseek-chat",
			"choices": [{"message": {"role": "assistant", "content": "matched text"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`)
	})

	res, err := p.Call(context.Background(), "deepseek/deepseek-chat", "prompt", 256)

	require.NoError(t, err)
	require.Equal(t, "deepseek/deepseek-chat", res.Model)
	require.Equal(t, "matched text", res.Content)
	require.Equal(t, "stop", res.FinishReason)
	require.Equal(t, 19, res.Usage.TotalTokens)
}

func TestOpenRouterCallEmptyContentIsTransientFailure(t *testing.T) {
	p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": ""}}]}`)
	})

	_, err := p.Call(context.Background(), "m", "prompt", 0)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.True(t, provErr.Retryable())
	require.Contains(t, provErr.Message, "empty content")
}

func TestOpenRouterCallNoChoicesIsTransientFailure(t *testing.T) {
	p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	})

	_, err := p.Call(context.Background(), "m", "prompt", 0)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.True(t, provErr.Retryable())
}

func TestOpenRouterCallClassifiesHTTPStatus(t *testing.T) {
	p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited", "type": "rate_limit"}}`)
	})

	_, err := p.Call(context.Background(), "m", "prompt", 0)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
	require.True(t, provErr.Retryable())
}

func TestOpenRouterCallBadRequestIsPermanent(t *testing.T) {
	p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "malformed messages array", "type": "invalid_request"}}`)
	})

	_, err := p.Call(context.Background(), "m", "prompt", 0)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.False(t, provErr.Retryable())
}
