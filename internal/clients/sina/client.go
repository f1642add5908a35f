// Package sina provides a client for the Sina finance quote, history,
// financial-report, and macro APIs.
package sina

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/time/rate"

	"github.com/hsliu/cnstock/internal/common"
)

const (
	quoteHost   = "https://hq.sinajs.cn"
	marketHost  = "https://money.finance.sina.com.cn"
	financeHost = "https://finance.sina.com.cn"

	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the market.SinaSource interface.
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

// NewClient creates a new Sina finance client
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
	return fmt.Sprintf("sina API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// getBytes performs a rate-limited GET request and returns the raw body.
// Sina rejects requests without a finance.sina.com.cn referer.
func (c *Client) getBytes(ctx context.Context, host, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if c.baseURL != "" {
		host = c.baseURL
	}
	reqURL := host + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cnstock)")
	req.Header.Set("Referer", "https://finance.sina.com.cn")

	c.logger.Debug().Str("url", host+path).Msg("Sina API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	return body, nil
}

// getJSON performs a GET request and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, host, path string, params url.Values, result any) error {
	body, err := c.getBytes(ctx, host, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeGBK converts a GBK-encoded body to UTF-8. The financial report
// download endpoints still serve GBK.
func decodeGBK(body []byte) ([]byte, error) {
	return simplifiedchinese.GBK.NewDecoder().Bytes(body)
}

// exchangeSymbol prefixes a bare code with its exchange (sh600000).
func exchangeSymbol(symbol string) string {
	lower := strings.ToLower(symbol)
	if strings.HasPrefix(lower, "sh") || strings.HasPrefix(lower, "sz") || strings.HasPrefix(lower, "bj") {
		return lower
	}
	switch {
	case strings.HasPrefix(symbol, "6"), strings.HasPrefix(symbol, "9"), strings.HasPrefix(symbol, "5"):
		return "sh" + symbol
	case strings.HasPrefix(symbol, "8"), strings.HasPrefix(symbol, "4"):
		return "bj" + symbol
	default:
		return "sz" + symbol
	}
}
