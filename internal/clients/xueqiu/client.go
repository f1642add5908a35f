// Package xueqiu provides a client for the Xueqiu stock quote and
// company profile APIs.
package xueqiu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hsliu/cnstock/internal/common"
)

const (
	stockHost = "https://stock.xueqiu.com"

	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the market.XueqiuSource interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL overrides the endpoint host. Used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Xueqiu client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xueqiu API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// envelope is the common response wrapper.
type envelope struct {
	Data             json.RawMessage `json:"data"`
	ErrorCode        int             `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
}

// get performs a rate-limited GET request and unwraps the response
// envelope into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	host := stockHost
	if c.baseURL != "" {
		host = c.baseURL
	}
	reqURL := host + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cnstock)")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", host+path).Msg("Xueqiu API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.ErrorCode != 0 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.ErrorDescription, Endpoint: path}
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// marketSymbol prefixes a bare code with its uppercase exchange tag
// (SH600000).
func marketSymbol(symbol string) string {
	upper := strings.ToUpper(symbol)
	if strings.HasPrefix(upper, "SH") || strings.HasPrefix(upper, "SZ") || strings.HasPrefix(upper, "BJ") {
		return upper
	}
	switch {
	case strings.HasPrefix(symbol, "6"), strings.HasPrefix(symbol, "9"), strings.HasPrefix(symbol, "5"):
		return "SH" + symbol
	case strings.HasPrefix(symbol, "8"), strings.HasPrefix(symbol, "4"):
		return "BJ" + symbol
	default:
		return "SZ" + symbol
	}
}
