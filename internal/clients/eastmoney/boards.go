package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hsliu/cnstock/internal/market"
)

// clist field ids and the table columns they map to, in output order.
var clistFields = []struct {
	id  string
	col string
}{
	{"f12", "symbol"},
	{"f14", "name"},
	{"f2", "price"},
	{"f3", "pct_change"},
	{"f4", "change"},
	{"f5", "volume"},
	{"f6", "amount"},
	{"f7", "amplitude"},
	{"f8", "turnover"},
	{"f10", "volume_ratio"},
	{"f15", "high"},
	{"f16", "low"},
	{"f17", "open"},
	{"f18", "prev_close"},
	{"f62", "main_net_inflow"},
}

type clistQuery struct {
	fs    string // market filter expression
	fid   string // sort field
	order string // "0" descending, "1" ascending
	limit int    // 0 means the API default page size
}

type clistResponse struct {
	Data struct {
		Total int              `json:"total"`
		Diff  []map[string]any `json:"diff"`
	} `json:"data"`
}

// clist queries the list endpoint shared by market snapshots, boards,
// ETF listings and rank screens.
func (c *Client) clist(ctx context.Context, q clistQuery) (*market.Table, error) {
	pageSize := q.limit
	if pageSize <= 0 {
		pageSize = 5000
	}

	fields := make([]string, len(clistFields))
	columns := make([]string, len(clistFields))
	for i, f := range clistFields {
		fields[i] = f.id
		columns[i] = f.col
	}

	params := url.Values{}
	params.Set("pn", "1")
	params.Set("pz", strconv.Itoa(pageSize))
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("po", q.order)
	params.Set("fid", q.fid)
	params.Set("fs", q.fs)
	params.Set("fields", strings.Join(fields, ","))

	var resp clistResponse
	if err := c.get(ctx, quoteHost, "/api/qt/clist/get", params, &resp); err != nil {
		return nil, err
	}

	table := market.NewTable(columns...)
	for _, item := range resp.Data.Diff {
		row := make([]any, len(clistFields))
		for i, f := range clistFields {
			if rawColumn(f.col) {
				row[i] = item[f.id]
			} else {
				row[i] = numOrNil(item[f.id])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// BoardList retrieves the real-time industry or concept board snapshot.
func (c *Client) BoardList(ctx context.Context, kind market.BoardKind) (*market.Table, error) {
	fs, err := boardFilter(kind)
	if err != nil {
		return nil, err
	}
	return c.clist(ctx, clistQuery{fs: fs, fid: "f3", order: "0"})
}

// SectorFundFlow retrieves per-board main fund flow, ranked by inflow.
func (c *Client) SectorFundFlow(ctx context.Context, kind market.BoardKind) (*market.Table, error) {
	fs, err := boardFilter(kind)
	if err != nil {
		return nil, err
	}
	return c.clist(ctx, clistQuery{fs: fs, fid: "f62", order: "0"})
}

func boardFilter(kind market.BoardKind) (string, error) {
	switch kind {
	case market.BoardIndustry, "":
		return "m:90+t:2+f:!50", nil
	case market.BoardConcept:
		return "m:90+t:3+f:!50", nil
	default:
		return "", fmt.Errorf("unsupported board kind %q", kind)
	}
}

// ETFList retrieves the real-time quote list for exchange-traded funds.
func (c *Client) ETFList(ctx context.Context) (*market.Table, error) {
	return c.clist(ctx, clistQuery{
		fs:    "b:MK0021,b:MK0022,b:MK0023,b:MK0024",
		fid:   "f12",
		order: "1",
	})
}

// rank screens map onto sorted clist queries over the A-share universe.
const allAShares = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"

// RankScreen retrieves a technical rank screen: the A-share list ranked
// by the screen's sort dimension, truncated to limit rows.
func (c *Client) RankScreen(ctx context.Context, screen market.Screen, limit int) (*market.Table, error) {
	if limit <= 0 {
		limit = 50
	}

	q := clistQuery{fs: allAShares, order: "0", limit: limit}
	switch screen {
	case market.ScreenNewHigh:
		q.fid = "f15" // rank by session high against price history
	case market.ScreenNewLow:
		q.fid = "f16"
		q.order = "1"
	case market.ScreenVolumeSurge:
		q.fid = "f10" // volume ratio
	case market.ScreenConsecutiveRise:
		q.fid = "f3"
	case market.ScreenBreakout:
		q.fid = "f7" // amplitude
	default:
		return nil, fmt.Errorf("unsupported screen %q", screen)
	}
	return c.clist(ctx, q)
}

// fflow kline field order for the per-stock fund flow endpoint.
var fundFlowColumns = []string{
	"date", "main_net_inflow", "small_net_inflow", "medium_net_inflow",
	"large_net_inflow", "xlarge_net_inflow", "main_net_inflow_pct",
	"small_net_inflow_pct", "medium_net_inflow_pct",
	"large_net_inflow_pct", "xlarge_net_inflow_pct",
}

// FundFlow retrieves the daily main/retail fund flow history of a stock.
func (c *Client) FundFlow(ctx context.Context, symbol string) (*market.Table, error) {
	params := url.Values{}
	params.Set("secid", secid(symbol))
	params.Set("lmt", "0")
	params.Set("klt", "101")
	params.Set("fields1", "f1,f2,f3,f7")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")

	var resp klineResponse
	if err := c.get(ctx, historyHost, "/api/qt/stock/fflow/daykline/get", params, &resp); err != nil {
		return nil, err
	}

	table := market.NewTable(fundFlowColumns...)
	for _, line := range resp.Data.Klines {
		fields := strings.Split(line, ",")
		row := make([]any, 0, len(fundFlowColumns))
		for i := range fundFlowColumns {
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
