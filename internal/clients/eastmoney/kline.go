package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hsliu/cnstock/internal/market"
)

// klineColumns matches the field order of the comma-separated kline
// records returned by the history API.
var klineColumns = []string{
	"date", "open", "close", "high", "low",
	"volume", "amount", "amplitude", "pct_change", "change", "turnover",
}

type klineResponse struct {
	Data struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// Kline retrieves candlestick history for a stock.
func (c *Client) Kline(ctx context.Context, q market.HistQuery) (*market.Table, error) {
	return c.kline(ctx, secid(q.Symbol), q)
}

// IndexKline retrieves candlestick history for an index.
func (c *Client) IndexKline(ctx context.Context, q market.HistQuery) (*market.Table, error) {
	return c.kline(ctx, indexSecid(q.Symbol), q)
}

func (c *Client) kline(ctx context.Context, id string, q market.HistQuery) (*market.Table, error) {
	klt, err := periodCode(q.Interval, q.Multiplier)
	if err != nil {
		return nil, err
	}
	fqt, err := adjustCode(q.Adjust)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("secid", id)
	params.Set("klt", klt)
	params.Set("fqt", fqt)
	params.Set("beg", compactDate(q.StartDate, "19700101"))
	params.Set("end", compactDate(q.EndDate, "20500101"))
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")

	var resp klineResponse
	if err := c.get(ctx, historyHost, "/api/qt/stock/kline/get", params, &resp); err != nil {
		return nil, err
	}

	table := market.NewTable(klineColumns...)
	for _, line := range resp.Data.Klines {
		fields := strings.Split(line, ",")
		row := make([]any, 0, len(klineColumns))
		for i := range klineColumns {
			if i < len(fields) {
				if i == 0 {
					row = append(row, fields[i])
				} else {
					row = append(row, numOrNil(fields[i]))
				}
			}
		}
		table.Append(row...)
	}
	return table, nil
}

// periodCode maps an interval plus multiplier onto the API's klt code.
func periodCode(interval string, multiplier int) (string, error) {
	if multiplier <= 0 {
		multiplier = 1
	}
	switch interval {
	case "minute", "":
		switch multiplier {
		case 1:
			return "1", nil
		case 5:
			return "5", nil
		case 15:
			return "15", nil
		case 30:
			return "30", nil
		}
		return "", fmt.Errorf("unsupported minute multiplier %d (want 1, 5, 15 or 30)", multiplier)
	case "hour":
		if multiplier == 1 {
			return "60", nil
		}
		return "", fmt.Errorf("unsupported hour multiplier %d", multiplier)
	case "day":
		return "101", nil
	case "week":
		return "102", nil
	case "month":
		return "103", nil
	default:
		return "", fmt.Errorf("unsupported interval %q", interval)
	}
}

func adjustCode(adjust string) (string, error) {
	switch adjust {
	case "", "none":
		return "0", nil
	case "qfq":
		return "1", nil
	case "hfq":
		return "2", nil
	default:
		return "", fmt.Errorf("unsupported adjust %q (want none, qfq or hfq)", adjust)
	}
}
