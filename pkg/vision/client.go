// Package vision talks to the external shelf-scanning service that
// turns pantry photos into raw ingredient detections.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/resilience"
)

const defaultBaseURL = "http://localhost:9090"

// Detector produces raw detections from an image.
type Detector interface {
	Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error)
}

// DetectRequest is the request body for POST /detect.
type DetectRequest struct {
	Image       []byte             `json:"-"`
	ImageBase64 string             `json:"image"`
	Context     *model.ScanContext `json:"context,omitempty"`
}

// DetectResponse is the response from POST /detect.
type DetectResponse struct {
	ScanID     string               `json:"scan_id"`
	Detections []model.RawDetection `json:"detections"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second to the service.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetry overrides the retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a vision service client.
func NewClient(apiKey string, opts ...Option) Detector {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error) {
	if req.ImageBase64 == "" && len(req.Image) > 0 {
		req.ImageBase64 = base64.StdEncoding.EncodeToString(req.Image)
	}
	if req.ImageBase64 == "" {
		return nil, eris.New("vision: request has no image")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "vision: marshal request")
	}

	return resilience.RetryVal(ctx, c.retry, "vision.detect", func(ctx context.Context) (*DetectResponse, error) {
		return c.detectOnce(ctx, body)
	})
}

func (c *httpClient) detectOnce(ctx context.Context, body []byte) (*DetectResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "vision: rate limit wait")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "vision: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "vision: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "vision: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("vision: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var result DetectResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "vision: unmarshal response")
	}

	return &result, nil
}
