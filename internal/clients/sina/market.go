package sina

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hsliu/cnstock/internal/market"
)

type klineBar struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

var klineColumns = []string{"date", "open", "high", "low", "close", "volume"}

// Kline retrieves candlestick history for a stock. The endpoint serves
// unadjusted prices only, so qfq/hfq requests are rejected and fall
// through to the next source.
func (c *Client) Kline(ctx context.Context, q market.HistQuery) (*market.Table, error) {
	return c.kline(ctx, exchangeSymbol(q.Symbol), q)
}

// IndexKline retrieves candlestick history for an index.
func (c *Client) IndexKline(ctx context.Context, q market.HistQuery) (*market.Table, error) {
	return c.kline(ctx, indexSymbol(q.Symbol), q)
}

func (c *Client) kline(ctx context.Context, symbol string, q market.HistQuery) (*market.Table, error) {
	if q.Adjust != "" && q.Adjust != "none" {
		return nil, fmt.Errorf("adjusted prices (%s) are not available from sina", q.Adjust)
	}
	scale, err := scaleCode(q.Interval, q.Multiplier)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("scale", scale)
	params.Set("ma", "no")
	params.Set("datalen", "1023")

	var bars []klineBar
	if err := c.getJSON(ctx, marketHost, "/quotes_service/api/json_v2.php/CN_MarketData.getKLineData", params, &bars); err != nil {
		return nil, err
	}

	table := market.NewTable(klineColumns...)
	for _, b := range bars {
		day := b.Day
		date := day
		if len(date) > 10 {
			date = date[:10]
		}
		if q.StartDate != "" && date < q.StartDate {
			continue
		}
		if q.EndDate != "" && date > q.EndDate {
			continue
		}
		table.Append(day, parseNum(b.Open), parseNum(b.High), parseNum(b.Low), parseNum(b.Close), parseNum(b.Volume))
	}
	return table, nil
}

func scaleCode(interval string, multiplier int) (string, error) {
	if multiplier <= 0 {
		multiplier = 1
	}
	switch interval {
	case "minute", "":
		switch multiplier {
		case 5:
			return "5", nil
		case 15:
			return "15", nil
		case 30:
			return "30", nil
		}
		return "", fmt.Errorf("unsupported minute multiplier %d (want 5, 15 or 30)", multiplier)
	case "hour":
		if multiplier == 1 {
			return "60", nil
		}
		return "", fmt.Errorf("unsupported hour multiplier %d", multiplier)
	case "day":
		return "240", nil
	default:
		return "", fmt.Errorf("unsupported interval %q", interval)
	}
}

// indexSymbol maps an index code onto sina's exchange-prefixed form.
func indexSymbol(symbol string) string {
	lower := strings.ToLower(symbol)
	if strings.HasPrefix(lower, "sh") || strings.HasPrefix(lower, "sz") {
		return lower
	}
	if strings.HasPrefix(symbol, "000") || strings.HasPrefix(symbol, "88") {
		return "sh" + symbol
	}
	return "sz" + symbol
}

// quote field positions in the hq.sinajs.cn response.
var quoteColumns = []string{
	"symbol", "name", "open", "prev_close", "price", "high", "low",
	"volume", "amount", "date", "time",
}

// Quote retrieves the real-time quote for a single stock from the
// text-based quote endpoint.
func (c *Client) Quote(ctx context.Context, symbol string) (*market.Table, error) {
	prefixed := exchangeSymbol(symbol)
	body, err := c.getBytes(ctx, quoteHost, "/list="+prefixed, nil)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeGBK(body)
	if err != nil {
		return nil, err
	}

	table := market.NewTable(quoteColumns...)
	// Response shape: var hq_str_sh600000="name,open,prev_close,price,...";
	text := string(decoded)
	start := strings.IndexByte(text, '"')
	end := strings.LastIndexByte(text, '"')
	if start < 0 || end <= start+1 {
		return table, nil
	}
	fields := strings.Split(text[start+1:end], ",")
	if len(fields) < 32 {
		return table, nil
	}

	table.Append(
		prefixed, fields[0],
		parseNum(fields[1]), parseNum(fields[2]), parseNum(fields[3]),
		parseNum(fields[4]), parseNum(fields[5]),
		parseNum(fields[8]), parseNum(fields[9]),
		fields[30], fields[31],
	)
	return table, nil
}
