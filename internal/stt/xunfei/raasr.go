package xunfei

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// ErrVariantUnsupported means the raasr endpoint reported the request path
// as unknown rather than rejecting the request outright. Only this outcome
// triggers the fallback to the legacy protocol; definitive rejections
// (bad signature, quota) surface as plain errors.
var ErrVariantUnsupported = errors.New("raasr api path not available")

const (
	raasrBaseInterval = 5 * time.Second
	raasrMaxInterval  = 30 * time.Second
	raasrMinBudget    = 10 * time.Minute
)

// raasr order statuses.
const (
	raasrStatusCreated = 0
	raasrStatusFailed  = 2
	raasrStatusRunning = 3
	raasrStatusDone    = 4
)

// raasrClient speaks the current protocol: canonical-query HMAC signing with
// the signature in a request header, and polling paced by the estimated
// processing time the server reports.
type raasrClient struct {
	appID  string
	secret string
	host   string
	http   *http.Client

	baseInterval time.Duration
	minBudget    time.Duration
}

func newRaasrClient(appID, secret, host string, httpClient *http.Client) *raasrClient {
	return &raasrClient{
		appID:        appID,
		secret:       secret,
		host:         host,
		http:         httpClient,
		baseInterval: raasrBaseInterval,
		minBudget:    raasrMinBudget,
	}
}

func (c *raasrClient) Transcribe(ctx context.Context, audio []byte, fileName string, duration int, onEvent func(msg string)) (string, error) {
	orderID, err := c.upload(ctx, audio, fileName, duration)
	if err != nil {
		return "", err
	}
	emit(onEvent, fmt.Sprintf("upload accepted, order %s", orderID))

	delay := c.baseInterval
	budget := c.minBudget
	var lastStatus int64 = raasrStatusRunning

	for attempt := 1; ; attempt++ {
		body, err := c.getResult(ctx, orderID)
		if err != nil {
			return "", err
		}

		if code := gjson.Get(body, "code").String(); code != "0" {
			return "", fmt.Errorf("result query rejected: code=%s desc=%s", code, gjson.Get(body, "descInfo").String())
		}

		if status := gjson.Get(body, "content.orderInfo.status"); status.Exists() {
			lastStatus = status.Int()
		}
		emit(onEvent, fmt.Sprintf("poll %d: status %d", attempt, lastStatus))

		switch lastStatus {
		case raasrStatusDone:
			return extractText(body, raasrStrategies)
		case raasrStatusFailed:
			return "", fmt.Errorf("remote recognition failed: %s", truncateRaw(body))
		}

		// The server estimates remaining processing in milliseconds;
		// widen the poll interval and the overall budget accordingly.
		if est := gjson.Get(body, "content.taskEstimateTime").Int(); est > 0 {
			estimate := time.Duration(est) * time.Millisecond
			if d := estimate / 10; d > delay {
				delay = min(d, raasrMaxInterval)
			}
			if b := 2 * estimate; b > budget {
				budget = b
			}
		}

		if time.Duration(attempt)*delay >= budget {
			return "", &PollTimeoutError{Attempts: attempt, LastStatus: lastStatus}
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (c *raasrClient) upload(ctx context.Context, audio []byte, fileName string, duration int) (string, error) {
	params := map[string]string{
		"appId":    c.appID,
		"ts":       strconv.FormatInt(time.Now().Unix(), 10),
		"fileSize": strconv.Itoa(len(audio)),
		"fileName": fileName,
		"duration": strconv.Itoa(duration),
	}

	body, status, err := c.post(ctx, "/upload", params, audio)
	if err != nil {
		if unsupportedStatus(status) {
			return "", fmt.Errorf("upload: %w", ErrVariantUnsupported)
		}
		return "", fmt.Errorf("upload audio: %w", err)
	}

	code := gjson.Get(body, "code").String()
	if unsupportedCode(code) {
		return "", fmt.Errorf("upload: %w", ErrVariantUnsupported)
	}
	if code != "0" {
		return "", fmt.Errorf("upload rejected: code=%s desc=%s", code, gjson.Get(body, "descInfo").String())
	}
	orderID := gjson.Get(body, "content.orderId").String()
	if orderID == "" {
		return "", fmt.Errorf("upload response missing orderId: %s", truncateRaw(body))
	}
	return orderID, nil
}

func (c *raasrClient) getResult(ctx context.Context, orderID string) (string, error) {
	params := map[string]string{
		"appId":      c.appID,
		"ts":         strconv.FormatInt(time.Now().Unix(), 10),
		"orderId":    orderID,
		"resultType": "transfer",
	}

	body, _, err := c.post(ctx, "/getResult", params, nil)
	if err != nil {
		return "", fmt.Errorf("query result: %w", err)
	}
	return body, nil
}

// post signs the sorted parameter set and sends the signature as a header,
// never in the query string.
func (c *raasrClient) post(ctx context.Context, path string, params map[string]string, payload []byte) (string, int, error) {
	signature := signCanonical(c.secret, canonicalQuery(params))

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path+"?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("signature", signature)

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

// unsupportedStatus enumerates the transport-level outcomes treated as "this
// API path does not exist here".
func unsupportedStatus(status int) bool {
	return status == http.StatusNotFound || status == http.StatusMethodNotAllowed
}

// unsupportedCode enumerates API-level codes meaning the route is unknown.
func unsupportedCode(code string) bool {
	return code == "404"
}
