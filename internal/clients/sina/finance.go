package sina

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hsliu/cnstock/internal/market"
)

// statement report download paths. The endpoints serve GBK tab-separated
// text with one line per report item and one column per report date.
const (
	balanceSheetPath    = "/corp/go.php/vDOWN_BalanceSheet/displaytype/4/stockid/%s/ctrl/all.phtml"
	incomeStatementPath = "/corp/go.php/vDOWN_ProfitStatement/displaytype/4/stockid/%s/ctrl/all.phtml"
	cashFlowPath        = "/corp/go.php/vDOWN_CashFlow/displaytype/4/stockid/%s/ctrl/all.phtml"
)

// BalanceSheet retrieves the full balance sheet history for a stock.
func (c *Client) BalanceSheet(ctx context.Context, symbol string) (*market.Table, error) {
	return c.statement(ctx, balanceSheetPath, symbol)
}

// IncomeStatement retrieves the full income statement history for a stock.
func (c *Client) IncomeStatement(ctx context.Context, symbol string) (*market.Table, error) {
	return c.statement(ctx, incomeStatementPath, symbol)
}

// CashFlow retrieves the full cash flow statement history for a stock.
func (c *Client) CashFlow(ctx context.Context, symbol string) (*market.Table, error) {
	return c.statement(ctx, cashFlowPath, symbol)
}

func (c *Client) statement(ctx context.Context, pathTemplate, symbol string) (*market.Table, error) {
	code := bareCode(symbol)
	body, err := c.getBytes(ctx, marketHost, fmt.Sprintf(pathTemplate, code), nil)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeGBK(body)
	if err != nil {
		return nil, err
	}
	return parseStatement(string(decoded))
}

// parseStatement transposes the downloaded report. Each input line holds
// one report item (first cell is the item name, the rest are per-date
// values); the output has one row per report date instead.
func parseStatement(text string) (*market.Table, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		columns []string
		series  [][]string
	)
	for _, line := range lines {
		line = strings.TrimRight(line, "\t ")
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if len(cells) < 2 {
			continue
		}
		columns = append(columns, strings.TrimSpace(cells[0]))
		series = append(series, cells[1:])
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("empty statement download")
	}

	// The first line carries the report dates.
	columns[0] = "report_date"
	dates := series[0]

	table := market.NewTable(columns...)
	for i, date := range dates {
		date = strings.TrimSpace(date)
		if date == "" {
			continue
		}
		row := make([]any, 0, len(columns))
		row = append(row, date)
		for _, values := range series[1:] {
			if i < len(values) {
				row = append(row, parseNum(values[i]))
			} else {
				row = append(row, nil)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// macro page parameters per indicator.
var macroPages = map[market.MacroIndicator]struct {
	cate    string
	event   string
	columns []string
}{
	market.MacroMoneySupply: {
		cate:  "fininfo",
		event: "1",
		columns: []string{
			"month", "m2", "m2_yoy", "m1", "m1_yoy", "m0", "m0_yoy",
		},
	},
	market.MacroGDP: {
		cate:  "nation",
		event: "0",
		columns: []string{
			"quarter", "gdp", "gdp_yoy", "primary_industry", "primary_yoy",
			"secondary_industry", "secondary_yoy", "tertiary_industry", "tertiary_yoy",
		},
	},
	market.MacroCPI: {
		cate:  "price",
		event: "0",
		columns: []string{
			"month", "cpi", "cpi_yoy", "cpi_mom", "cpi_accumulated",
		},
	},
	market.MacroPMI: {
		cate:  "industry",
		event: "5",
		columns: []string{
			"month", "pmi", "pmi_yoy",
		},
	},
}

// Macro retrieves a macro economic series. Market-wide stock statistics
// are not published here, so that indicator falls through to the next
// source.
func (c *Client) Macro(ctx context.Context, indicator market.MacroIndicator) (*market.Table, error) {
	page, ok := macroPages[indicator]
	if !ok {
		return nil, fmt.Errorf("macro indicator %q is not available from sina", indicator)
	}

	params := url.Values{}
	params.Set("cate", page.cate)
	params.Set("event", page.event)
	params.Set("from", "0")
	params.Set("num", "1000")
	params.Set("condition", "")

	body, err := c.getBytes(ctx, financeHost, "/mac/api/jsonp.php/SINAREMOTECALLCALLBACK/MacPage_Service.get_pagedata", params)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeGBK(body)
	if err != nil {
		return nil, err
	}

	records, err := extractJSONPRecords(string(decoded))
	if err != nil {
		return nil, err
	}

	table := market.NewTable(page.columns...)
	for _, record := range records {
		row := make([]any, len(page.columns))
		for i := range page.columns {
			if i >= len(record) {
				break
			}
			if i == 0 {
				row[i] = fmt.Sprint(record[i])
				continue
			}
			row[i] = macroCell(record[i])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func macroCell(v any) any {
	switch val := v.(type) {
	case string:
		return parseNum(val)
	default:
		return val
	}
}

// TradeCalendar retrieves the Shanghai exchange trading day list. The
// endpoint serves a JavaScript array of Date constructors with
// zero-based months.
func (c *Client) TradeCalendar(ctx context.Context) (*market.Table, error) {
	body, err := c.getBytes(ctx, financeHost, "/realstock/company/klc_td_sh.txt", nil)
	if err != nil {
		return nil, err
	}

	table := market.NewTable("trade_date")
	for _, m := range dateCtorPattern.FindAllStringSubmatch(string(body), -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		table.Append(fmt.Sprintf("%04d-%02d-%02d", year, month+1, day))
	}
	if table.Empty() {
		return nil, fmt.Errorf("no trading days in calendar response")
	}
	return table, nil
}

// bareCode strips any exchange prefix, leaving the six-digit code.
func bareCode(symbol string) string {
	lower := strings.ToLower(symbol)
	for _, prefix := range []string{"sh", "sz", "bj"} {
		if strings.HasPrefix(lower, prefix) {
			return symbol[len(prefix):]
		}
	}
	return symbol
}

// parseNum converts a numeric cell to float64, passing placeholders
// through as nil and non-numeric text unchanged.
func parseNum(s string) any {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return f
	}
	return s
}
