// Package eastmoney provides a client for the Eastmoney quote, history,
// and datacenter APIs.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hsliu/cnstock/internal/common"
)

const (
	quoteHost      = "https://push2.eastmoney.com"
	historyHost    = "https://push2his.eastmoney.com"
	datacenterHost = "https://datacenter-web.eastmoney.com"
	searchHost     = "https://search-api-web.eastmoney.com"

	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the market.EastmoneySource interface.
type Client struct {
	baseURL    string // overrides the endpoint host when set (tests)
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL overrides the endpoint host. Used by tests to point the
// client at a local server.
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

// NewClient creates a new Eastmoney client
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
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, host, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if c.baseURL != "" {
		host = c.baseURL
	}
	reqURL := fmt.Sprintf("%s%s?%s", host, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cnstock)")

	c.logger.Debug().Str("url", host+path).Msg("Eastmoney API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// secid formats a symbol as Eastmoney's market-prefixed security id:
// 1.<code> for Shanghai, 0.<code> for Shenzhen/Beijing.
func secid(symbol string) string {
	code := strings.TrimLeft(strings.ToLower(symbol), "shz")
	code = strings.TrimPrefix(code, ".")
	if code == "" {
		code = symbol
	}
	switch {
	case strings.HasPrefix(code, "6"), strings.HasPrefix(code, "9"), strings.HasPrefix(code, "5"):
		return "1." + code
	default:
		return "0." + code
	}
}

// indexSecid formats an index symbol. Shanghai indices start with 000,
// which collides with Shenzhen stock codes, hence the separate mapping.
func indexSecid(symbol string) string {
	code := strings.ToLower(symbol)
	switch {
	case strings.HasPrefix(code, "sh"):
		return "1." + strings.TrimPrefix(code, "sh")
	case strings.HasPrefix(code, "sz"):
		return "0." + strings.TrimPrefix(code, "sz")
	case strings.HasPrefix(code, "000"), strings.HasPrefix(code, "88"):
		return "1." + code
	default:
		return "0." + code
	}
}

// rawColumn reports whether a column holds an identifier that must keep
// its zero-padded string form. Running codes like "000001" through
// numeric coercion would strip the leading zeros.
func rawColumn(col string) bool {
	return col == "symbol" || col == "index_code"
}

// numOrNil converts a loosely-typed quote field into a table cell.
// Eastmoney reports missing values as the string "-".
func numOrNil(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "-" || x == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
		return x
	default:
		return v
	}
}

// compactDate converts YYYY-MM-DD into Eastmoney's YYYYMMDD form.
func compactDate(date, fallback string) string {
	if date == "" {
		return fallback
	}
	return strings.ReplaceAll(date, "-", "")
}
