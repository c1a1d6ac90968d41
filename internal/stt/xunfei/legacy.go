package xunfei

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// PollTimeoutError means the attempt budget ran out before the service
// reached a terminal status.
type PollTimeoutError struct {
	Attempts   int
	LastStatus int64
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("recognition still not finished after %d polls (last status %d)", e.Attempts, e.LastStatus)
}

const (
	legacyPollInterval = 5 * time.Second
	legacyMaxPolls     = 120
)

// legacyClient speaks the lfasr protocol: signature in the query string,
// fixed-interval polling.
type legacyClient struct {
	appID  string
	secret string
	host   string
	http   *http.Client

	pollInterval time.Duration
	maxPolls     int
}

func newLegacyClient(appID, secret, host string, httpClient *http.Client) *legacyClient {
	return &legacyClient{
		appID:        appID,
		secret:       secret,
		host:         host,
		http:         httpClient,
		pollInterval: legacyPollInterval,
		maxPolls:     legacyMaxPolls,
	}
}

// Transcribe uploads the audio and polls until the order completes, then
// resolves the transcript through the known result shapes.
func (c *legacyClient) Transcribe(ctx context.Context, audio []byte, fileName string, duration int, onEvent func(msg string)) (string, error) {
	orderID, err := c.upload(ctx, audio, fileName, duration)
	if err != nil {
		return "", err
	}
	emit(onEvent, fmt.Sprintf("upload accepted, order %s", orderID))

	var lastStatus int64 = 3
	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		body, err := c.getResult(ctx, orderID)
		if err != nil {
			return "", err
		}

		if code := gjson.Get(body, "code").String(); code != "0" {
			return "", fmt.Errorf("result query rejected: code=%s desc=%s", code, gjson.Get(body, "desc").String())
		}

		status := gjson.Get(body, "content.orderInfo.status")
		if status.Exists() {
			lastStatus = status.Int()
		}
		emit(onEvent, fmt.Sprintf("poll %d/%d: status %d", attempt, c.maxPolls, lastStatus))

		switch lastStatus {
		case 4:
			return extractText(body, legacyStrategies)
		case -1:
			return "", fmt.Errorf("remote recognition failed: %s", truncateRaw(body))
		}

		if attempt < c.maxPolls {
			if err := sleepCtx(ctx, c.pollInterval); err != nil {
				return "", err
			}
		}
	}
	return "", &PollTimeoutError{Attempts: c.maxPolls, LastStatus: lastStatus}
}

func (c *legacyClient) upload(ctx context.Context, audio []byte, fileName string, duration int) (string, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	q := url.Values{
		"appId":    {c.appID},
		"signa":    {signLegacy(c.appID, c.secret, ts)},
		"ts":       {ts},
		"fileSize": {strconv.Itoa(len(audio))},
		"fileName": {fileName},
		"duration": {strconv.Itoa(duration)},
	}

	body, _, err := c.post(ctx, c.host+"/upload?"+q.Encode(), audio)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}

	if code := gjson.Get(body, "code").String(); code != "0" {
		return "", fmt.Errorf("upload rejected: code=%s desc=%s", code, gjson.Get(body, "desc").String())
	}
	orderID := gjson.Get(body, "content.orderId").String()
	if orderID == "" {
		return "", fmt.Errorf("upload response missing orderId: %s", truncateRaw(body))
	}
	return orderID, nil
}

func (c *legacyClient) getResult(ctx context.Context, orderID string) (string, error) {
	// Each query is re-signed with a fresh timestamp.
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	q := url.Values{
		"appId":      {c.appID},
		"signa":      {signLegacy(c.appID, c.secret, ts)},
		"ts":         {ts},
		"orderId":    {orderID},
		"resultType": {"transfer,predict"},
	}

	body, _, err := c.post(ctx, c.host+"/getResult?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("query result: %w", err)
	}
	return body, nil
}

func (c *legacyClient) post(ctx context.Context, rawURL string, payload []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("http %d: %s", resp.StatusCode, truncateRaw(string(body)))
	}
	return string(body), resp.StatusCode, nil
}

func emit(onEvent func(string), msg string) {
	if onEvent != nil {
		onEvent(msg)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
