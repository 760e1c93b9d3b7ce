package sonar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/xlog"
	"golang.org/x/time/rate"
)

//go:generate mockgen -source=client.go -destination=../../mocks/mocksonar/sonar_mock.gen.go -package mocksonar

var logger = xlog.NewPackageLogger("github.com/effective-security/sonarmcp/pkg", "sonar")

const (
	// DefaultBaseURL is the API endpoint root.
	DefaultBaseURL = "https://api.perplexity.ai"
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 30 * time.Second

	chatCompletionsPath = "/chat/completions"
	maxResponseSize     = 16 << 20
)

// Searcher executes a search request against the API.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*APIResponse, error)
}

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option is an option for the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit limits the outbound request rate.
// A zero rps disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client is a client for the Sonar chat completions API.
type Client struct {
	token      string
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient Doer
	limiter    *rate.Limiter
}

var _ Searcher = (*Client)(nil)

// New returns a new client. An empty token is accepted,
// calls then fail with AuthError before any network access.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken returns true if the API credential is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Search sends the request and decodes the response.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*APIResponse, error) {
	if c.token == "" {
		return nil, toolerr.New(toolerr.AuthError,
			"API key is not configured: set the PERPLEXITY_API_KEY environment variable")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, toolerr.Newf(toolerr.Timeout, "request was not sent within %s: %s", c.timeout, err.Error())
		}
	}

	payload := NewPayload(req)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.setHeaders(httpReq)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "sending",
		"tool", req.Tool,
		"model", payload.Model,
		"search_mode", payload.SearchMode,
		"domain_filter", payload.SearchDomainFilter,
		"web_search_options", payload.WebSearchOptions,
	)

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "status",
			"tool", req.Tool,
			"status", resp.StatusCode,
			"elapsed", time.Since(started).String(),
		)
		return nil, statusError(resp.StatusCode, bs)
	}

	res, err := Decode(bs)
	if err != nil {
		return nil, err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "received",
		"tool", req.Tool,
		"id", res.ID,
		"citations", len(res.Citations),
		"missing", res.Missing,
		"elapsed", time.Since(started).String(),
	)
	return res, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return toolerr.Newf(toolerr.Timeout, "no response from API within %s", c.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return toolerr.New(toolerr.Timeout, "request was cancelled before the API responded")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return toolerr.Newf(toolerr.Timeout, "network timeout: %s", netErr.Error())
	}
	return toolerr.Newf(toolerr.UpstreamError, "connection error: %s", err.Error())
}

func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return toolerr.WithStatus(toolerr.AuthError, status,
			fmt.Sprintf("API key rejected (HTTP %d): %s", status, detail))
	case http.StatusTooManyRequests:
		return toolerr.WithStatus(toolerr.RateLimited, status,
			fmt.Sprintf("rate limited by API (HTTP %d): %s", status, detail))
	default:
		return toolerr.WithStatus(toolerr.UpstreamError, status,
			fmt.Sprintf("API error (HTTP %d): %s", status, detail))
	}
}
