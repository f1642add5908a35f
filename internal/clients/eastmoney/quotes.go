package eastmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hsliu/cnstock/internal/market"
)

// quote field ids for the single-security endpoint.
const quoteFields = "f43,f44,f45,f46,f47,f48,f57,f58,f60,f168,f169,f170"

type quoteResponse struct {
	Data map[string]any `json:"data"`
}

var quoteColumns = []string{
	"symbol", "name", "price", "open", "high", "low",
	"prev_close", "volume", "amount", "turnover", "change", "pct_change",
}

// Quote retrieves the real-time quote for a single stock.
func (c *Client) Quote(ctx context.Context, symbol string) (*market.Table, error) {
	return c.quote(ctx, secid(symbol))
}

// IndexQuote retrieves the real-time quote for an index.
func (c *Client) IndexQuote(ctx context.Context, symbol string) (*market.Table, error) {
	return c.quote(ctx, indexSecid(symbol))
}

func (c *Client) quote(ctx context.Context, id string) (*market.Table, error) {
	params := url.Values{}
	params.Set("secid", id)
	params.Set("invt", "2")
	params.Set("fltt", "2")
	params.Set("fields", quoteFields)

	var resp quoteResponse
	if err := c.get(ctx, quoteHost, "/api/qt/stock/get", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return market.NewTable(quoteColumns...), nil
	}

	d := resp.Data
	table := market.NewTable(quoteColumns...)
	table.Append(
		d["f57"], d["f58"],
		numOrNil(d["f43"]), numOrNil(d["f46"]), numOrNil(d["f44"]), numOrNil(d["f45"]),
		numOrNil(d["f60"]), numOrNil(d["f47"]), numOrNil(d["f48"]),
		numOrNil(d["f168"]), numOrNil(d["f169"]), numOrNil(d["f170"]),
	)
	return table, nil
}

// Snapshot retrieves a real-time quote row for every listed A-share.
func (c *Client) Snapshot(ctx context.Context) (*market.Table, error) {
	return c.clist(ctx, clistQuery{
		fs:    "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23",
		fid:   "f12",
		order: "1", // ascending by code
	})
}

// StockInfo retrieves basic company information as an item/value table.
func (c *Client) StockInfo(ctx context.Context, symbol string) (*market.Table, error) {
	params := url.Values{}
	params.Set("secid", secid(symbol))
	params.Set("fltt", "2")
	params.Set("fields", "f57,f58,f84,f85,f116,f117,f127,f189")

	var resp quoteResponse
	if err := c.get(ctx, quoteHost, "/api/qt/stock/get", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return market.NewTable("item", "value"), nil
	}

	d := resp.Data
	table := market.NewTable("item", "value")
	for _, kv := range []struct {
		item  string
		field string
	}{
		{"symbol", "f57"},
		{"name", "f58"},
		{"total_shares", "f84"},
		{"float_shares", "f85"},
		{"total_market_cap", "f116"},
		{"float_market_cap", "f117"},
		{"industry", "f127"},
		{"listing_date", "f189"},
	} {
		value := d[kv.field]
		if !rawColumn(kv.item) {
			value = numOrNil(value)
		}
		table.Append(kv.item, value)
	}
	return table, nil
}

type newsResponse struct {
	Result struct {
		CmsArticleWebOld []struct {
			Title     string `json:"title"`
			Content   string `json:"content"`
			Date      string `json:"date"`
			MediaName string `json:"mediaName"`
			URL       string `json:"url"`
		} `json:"cmsArticleWebOld"`
	} `json:"result"`
}

// News retrieves recent news articles mentioning a stock.
func (c *Client) News(ctx context.Context, symbol string) (*market.Table, error) {
	param := map[string]any{
		"uid":           "",
		"keyword":       symbol,
		"type":          []string{"cmsArticleWebOld"},
		"client":        "web",
		"clientVersion": "curr",
		"param": map[string]any{
			"cmsArticleWebOld": map[string]any{
				"searchScope": "default", "sort": "default", "pageIndex": 1, "pageSize": 100,
			},
		},
	}
	paramJSON, err := json.Marshal(param)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("cb", "cb")
	params.Set("param", string(paramJSON))

	body, err := c.getText(ctx, searchHost, "/search/jsonp", params)
	if err != nil {
		return nil, err
	}

	var resp newsResponse
	if err := json.Unmarshal(stripJSONP(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	table := market.NewTable("date", "title", "content", "media", "url")
	for _, a := range resp.Result.CmsArticleWebOld {
		table.Append(a.Date, a.Title, a.Content, a.MediaName, a.URL)
	}
	return table, nil
}

// getText performs a rate-limited GET request and returns the raw body,
// for the handful of endpoints that wrap JSON in a callback.
func (c *Client) getText(ctx context.Context, host, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if c.baseURL != "" {
		host = c.baseURL
	}
	reqURL := fmt.Sprintf("%s%s?%s", host, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cnstock)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	return io.ReadAll(resp.Body)
}

// stripJSONP removes a callback wrapper like cb({...}); leaving the JSON.
func stripJSONP(body []byte) []byte {
	start := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if start >= 0 && end > start {
		return body[start+1 : end]
	}
	return body
}
