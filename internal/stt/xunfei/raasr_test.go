package xunfei

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRaasrClient(host string) *raasrClient {
	c := newRaasrClient("app1", "secret1", host, &http.Client{})
	c.baseInterval = time.Millisecond
	c.minBudget = 50 * time.Millisecond
	return c
}

// requireSignedHeader checks the signature header matches the canonical
// string rebuilt from the request's own query parameters.
func requireSignedHeader(t *testing.T, r *http.Request) {
	t.Helper()

	params := map[string]string{}
	for k, v := range r.URL.Query() {
		params[k] = v[0]
	}
	want := signCanonical("secret1", canonicalQuery(params))
	require.Equal(t, want, r.Header.Get("signature"))
	require.Empty(t, r.URL.Query().Get("signature"))
}

func TestRaasrTranscribeSignsInHeaderAndPolls(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireSignedHeader(t, r)

		switch r.URL.Path {
		case "/upload":
			fmt.Fprint(w, `{"code":"0","content":{"orderId":"ord-2"}}`)
		case "/getResult":
			polls++
			switch polls {
			case 1:
				fmt.Fprint(w, `{"code":"0","content":{"orderInfo":{"status":0}}}`)
			case 2:
				fmt.Fprint(w, `{"code":"0","content":{"orderInfo":{"status":3}}}`)
			default:
				fmt.Fprint(w, latticeBody(t, "hello ", "world"))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestRaasrClient(srv.URL)
	text, err := c.Transcribe(context.Background(), []byte("audio"), "a.wav", 10, nil)

	require.NoError(t, err)
	require.Equal(t, "hello world", text)
	require.Equal(t, 3, polls)
}

func TestRaasrFailureStatusStopsPolling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/upload" {
			fmt.Fprint(w, `{"code":"0","content":{"orderId":"ord-2"}}`)
			return
		}
		fmt.Fprint(w, `{"code":"0","content":{"orderInfo":{"status":2}}}`)
	}))
	defer srv.Close()

	c := newTestRaasrClient(srv.URL)
	_, err := c.Transcribe(context.Background(), []byte("audio"), "a.wav", 10, nil)

	require.Error(t, err)
	require.Contains(t, err.Error(), "recognition failed")
}

func TestRaasrPollBudgetTerminates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/upload" {
			fmt.Fprint(w, `{"code":"0","content":{"orderId":"ord-2"}}`)
			return
		}
		// Never reaches a terminal status.
		fmt.Fprint(w, `{"code":"0","content":{"orderInfo":{"status":3}}}`)
	}))
	defer srv.Close()

	c := newTestRaasrClient(srv.URL)
	c.minBudget = 5 * time.Millisecond

	_, err := c.Transcribe(context.Background(), []byte("audio"), "a.wav", 10, nil)

	var timeoutErr *PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Greater(t, timeoutErr.Attempts, 0)
}

func TestRaasrEstimateWidensDelayAndBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/upload" {
			fmt.Fprint(w, `{"code":"0","content":{"orderId":"ord-2"}}`)
			return
		}
		fmt.Fprint(w, `{"code":"0","content":{"orderInfo":{"status":3},"taskEstimateTime":600000}}`)
	}))
	defer srv.Close()

	c := newTestRaasrClient(srv.URL)
	// One short poll, then cancel; just verifying the estimate maths do
	// not panic and the loop respects cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Transcribe(ctx, []byte("audio"), "a.wav", 10, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRaasrUploadNotFoundIsVariantUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestRaasrClient(srv.URL)
	_, err := c.Transcribe(context.Background(), []byte("audio"), "a.wav", 10, nil)

	require.ErrorIs(t, err, ErrVariantUnsupported)
}

func TestRaasrUploadDefinitiveRejectionIsNotUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"26602","descInfo":"signature check failed"}`)
	}))
	defer srv.Close()

	c := newTestRaasrClient(srv.URL)
	_, err := c.Transcribe(context.Background(), []byte("audio"), "a.wav", 10, nil)

	require.Error(t, err)
	require.NotErrorIs(t, err, ErrVariantUnsupported)
	require.Contains(t, err.Error(), "signature check failed")
}
