package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/creatorlogic/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Apify v2 API.
	DefaultBaseURL = "https://api.apify.com/v2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// DefaultLogTailLines is how many non-empty log lines GetLogTail keeps.
	DefaultLogTailLines = 15
)

// Client is an Apify API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewClient creates a new Apify client. An empty token is accepted here and
// reported as a ConfigError on the first call.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// actorPath converts "owner/name" into the "owner~name" form used in URLs.
func actorPath(actorID string) string {
	return strings.Replace(actorID, "/", "~", 1)
}

type runEnvelope struct {
	Data models.RemoteRun `json:"data"`
}

// SubmitRun starts an actor run with the given input.
func (c *Client) SubmitRun(ctx context.Context, actorID string, input interface{}) (*models.RemoteRun, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor input: %w", err)
	}

	params := url.Values{}
	params.Set("token", c.token)

	resp, err := c.do(ctx, http.MethodPost, "/acts/"+actorPath(actorID)+"/runs", params, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode run response: %w", err)
	}
	if env.Data.ID == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "run response has no id", Endpoint: "/acts/" + actorPath(actorID) + "/runs"}
	}
	return &env.Data, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, actorID, runID string) (*models.RemoteRun, error) {
	resp, err := c.do(ctx, http.MethodGet, "/acts/"+actorPath(actorID)+"/runs/"+runID, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode run status: %w", err)
	}
	return &env.Data, nil
}

// GetDatasetItems fetches every item of a dataset as raw JSON records.
func (c *Client) GetDatasetItems(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("format", "json")

	resp, err := c.do(ctx, http.MethodGet, "/datasets/"+datasetID+"/items", params, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}
	return items, nil
}

// GetLogTail returns the last n non-empty lines of a run's log.
func (c *Client) GetLogTail(ctx context.Context, runID string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultLogTailLines
	}

	resp, err := c.do(ctx, http.MethodGet, "/actor-runs/"+runID+"/log", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	return TailLines(string(raw), n), nil
}

// TailLines returns the last n non-empty lines of text, trimmed of trailing whitespace.
func TailLines(text string, n int) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// do performs an authenticated request and returns the response for 2xx statuses.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte) (*http.Response, error) {
	if c.token == "" {
		return nil, &ConfigError{Setting: "apify token"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &RateLimitError{RetryAfter: time.Second}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("url", c.baseURL+path).
			Msg("Apify API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		retry := time.Second
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			retry = time.Duration(secs) * time.Second
		}
		return nil, &RateLimitError{RetryAfter: retry}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Endpoint:   path,
		}
	}

	return resp, nil
}
