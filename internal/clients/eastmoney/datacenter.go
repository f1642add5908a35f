package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hsliu/cnstock/internal/market"
)

// dcColumn maps a datacenter report field onto a table column.
type dcColumn struct {
	field string
	col   string
}

type dcQuery struct {
	report   string
	columns  []dcColumn
	filter   string
	sort     string // sortColumns, empty for report default
	sortType string // "-1" descending, "1" ascending
	pageSize int
}

type dcResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  struct {
		Data []map[string]any `json:"data"`
	} `json:"result"`
}

// datacenter queries the report API that backs most reference-data
// endpoints (margin, billboard, dividends, financials, macro series).
func (c *Client) datacenter(ctx context.Context, q dcQuery) (*market.Table, error) {
	pageSize := q.pageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	params := url.Values{}
	params.Set("reportName", q.report)
	params.Set("columns", "ALL")
	params.Set("pageNumber", "1")
	params.Set("pageSize", strconv.Itoa(pageSize))
	if q.filter != "" {
		params.Set("filter", q.filter)
	}
	if q.sort != "" {
		params.Set("sortColumns", q.sort)
		params.Set("sortTypes", q.sortType)
	}

	var resp dcResponse
	if err := c.get(ctx, datacenterHost, "/api/data/v1/get", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success && resp.Message != "" {
		return nil, fmt.Errorf("datacenter report %s: %s", q.report, resp.Message)
	}

	columns := make([]string, len(q.columns))
	for i, col := range q.columns {
		columns[i] = col.col
	}
	table := market.NewTable(columns...)
	for _, item := range resp.Result.Data {
		row := make([]any, len(q.columns))
		for i, col := range q.columns {
			if rawColumn(col.col) {
				row[i] = item[col.field]
			} else {
				row[i] = numOrNil(item[col.field])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func symbolFilter(symbol string) string {
	return fmt.Sprintf(`(SECURITY_CODE="%s")`, symbol)
}

// MarginDetail retrieves the margin trading balance history of a stock.
func (c *Client) MarginDetail(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPTA_WEB_RZRQ_GGMX",
		filter: fmt.Sprintf(`(scode="%s")`, symbol),
		sort:   "date", sortType: "-1",
		columns: []dcColumn{
			{"DATE", "date"},
			{"SCODE", "symbol"},
			{"SECNAME", "name"},
			{"RZYE", "margin_balance"},
			{"RZMRE", "margin_buy"},
			{"RZCHE", "margin_repay"},
			{"RQYE", "short_balance"},
			{"RQMCL", "short_sell_volume"},
			{"RZRQYE", "total_balance"},
		},
	})
}

// Billboard retrieves dragon-tiger list detail rows for a date range.
func (c *Client) Billboard(ctx context.Context, startDate, endDate string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DAILYBILLBOARD_DETAILSNEW",
		filter: fmt.Sprintf(`(TRADE_DATE>='%s')(TRADE_DATE<='%s')`, startDate, endDate),
		sort:   "TRADE_DATE,SECURITY_CODE", sortType: "-1,1",
		columns: []dcColumn{
			{"TRADE_DATE", "date"},
			{"SECURITY_CODE", "symbol"},
			{"SECURITY_NAME_ABBR", "name"},
			{"CLOSE_PRICE", "close"},
			{"CHANGE_RATE", "pct_change"},
			{"BILLBOARD_NET_AMT", "billboard_net_amount"},
			{"BILLBOARD_BUY_AMT", "billboard_buy_amount"},
			{"BILLBOARD_SELL_AMT", "billboard_sell_amount"},
			{"TURNOVERRATE", "turnover"},
			{"EXPLANATION", "reason"},
		},
	})
}

// BlockTrades retrieves block trade records for a stock.
func (c *Client) BlockTrades(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DATA_BLOCKTRADE",
		filter: symbolFilter(symbol),
		sort:   "TRADE_DATE", sortType: "-1",
		columns: []dcColumn{
			{"TRADE_DATE", "date"},
			{"SECURITY_CODE", "symbol"},
			{"SECURITY_NAME_ABBR", "name"},
			{"DEAL_PRICE", "price"},
			{"DEAL_VOLUME", "volume"},
			{"DEAL_AMT", "amount"},
			{"PREMIUM_RATIO", "premium_ratio"},
			{"BUYER_NAME", "buyer"},
			{"SELLER_NAME", "seller"},
		},
	})
}

// Dividends retrieves the dividend and bonus-share history of a stock.
func (c *Client) Dividends(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_SHAREBONUS_DET",
		filter: symbolFilter(symbol),
		sort:   "EX_DIVIDEND_DATE", sortType: "-1",
		columns: []dcColumn{
			{"SECURITY_CODE", "symbol"},
			{"SECURITY_NAME_ABBR", "name"},
			{"NOTICE_DATE", "notice_date"},
			{"EX_DIVIDEND_DATE", "ex_dividend_date"},
			{"EQUITY_RECORD_DATE", "record_date"},
			{"PAY_CASH_DATE", "pay_date"},
			{"PRETAX_BONUS_RMB", "cash_dividend"},
			{"BONUS_IT_RATIO", "bonus_share_ratio"},
			{"IMPL_PLAN_PROFILE", "plan"},
		},
	})
}

// ShareholderCount retrieves the shareholder count history of a stock.
func (c *Client) ShareholderCount(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_HOLDERNUM_DET",
		filter: symbolFilter(symbol),
		sort:   "END_DATE", sortType: "-1",
		columns: []dcColumn{
			{"SECURITY_CODE", "symbol"},
			{"SECURITY_NAME_ABBR", "name"},
			{"END_DATE", "end_date"},
			{"HOLDER_NUM", "holder_count"},
			{"HOLDER_NUM_RATIO", "holder_count_change_pct"},
			{"AVG_MARKET_CAP", "avg_market_cap_per_holder"},
			{"AVG_HOLD_NUM", "avg_shares_per_holder"},
			{"TOTAL_MARKET_CAP", "total_market_cap"},
		},
	})
}

// RetailAttention retrieves the retail-investor attention index series.
func (c *Client) RetailAttention(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DMSK_TS_STOCKNEW",
		filter: symbolFilter(symbol),
		sort:   "TRADE_DATE", sortType: "-1",
		columns: []dcColumn{
			{"TRADE_DATE", "date"},
			{"SECURITY_CODE", "symbol"},
			{"MARKET_FOCUS", "attention_index"},
			{"MARKET_FOCUS_RANK", "attention_rank"},
		},
	})
}

// RetailSentiment retrieves the daily retail bullish-ratio series.
func (c *Client) RetailSentiment(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DMSK_TS_STOCKEVALUATE",
		filter: symbolFilter(symbol),
		sort:   "TRADE_DATE", sortType: "-1",
		columns: []dcColumn{
			{"TRADE_DATE", "date"},
			{"SECURITY_CODE", "symbol"},
			{"BULLISH_RATIO", "bullish_pct"},
			{"BEARISH_RATIO", "bearish_pct"},
		},
	})
}

// InstitutionResearch retrieves institutional rating and research records.
func (c *Client) InstitutionResearch(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_ORG_RATING",
		filter: symbolFilter(symbol),
		sort:   "RATING_DATE", sortType: "-1",
		columns: []dcColumn{
			{"RATING_DATE", "date"},
			{"SECURITY_CODE", "symbol"},
			{"ORG_NAME", "institution"},
			{"RATING_NAME", "rating"},
			{"TARGET_PRICE", "target_price"},
			{"RESEARCHER", "analyst"},
		},
	})
}

// InstitutionParticipation retrieves the institutional participation series.
func (c *Client) InstitutionParticipation(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DMSK_TS_JGCYD",
		filter: symbolFilter(symbol),
		sort:   "TRADE_DATE", sortType: "-1",
		columns: []dcColumn{
			{"TRADE_DATE", "date"},
			{"SECURITY_CODE", "symbol"},
			{"ORG_PARTICIPATE", "institution_participation_pct"},
		},
	})
}

// BusinessComposition retrieves the main-business revenue breakdown.
func (c *Client) BusinessComposition(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_F10_FN_MAINOP",
		filter: symbolFilter(symbol),
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "report_date"},
			{"SECURITY_CODE", "symbol"},
			{"ITEM_NAME", "item"},
			{"MAINOP_TYPE", "breakdown_type"},
			{"MAIN_BUSINESS_INCOME", "revenue"},
			{"MBI_RATIO", "revenue_pct"},
			{"MAIN_BUSINESS_RPOFIT", "profit"},
			{"GROSS_RPOFIT_RATIO", "gross_margin"},
		},
	})
}

// BalanceSheet retrieves balance sheet report rows for a stock.
func (c *Client) BalanceSheet(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DMSK_FN_BALANCE",
		filter: symbolFilter(symbol),
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "report_date"},
			{"SECURITY_CODE", "symbol"},
			{"TOTAL_ASSETS", "total_assets"},
			{"TOTAL_LIABILITIES", "total_liabilities"},
			{"TOTAL_EQUITY", "total_equity"},
			{"MONETARYFUNDS", "cash"},
			{"ACCOUNTS_RECE", "accounts_receivable"},
			{"INVENTORY", "inventory"},
			{"ACCOUNTS_PAYABLE", "accounts_payable"},
			{"DEBT_RATIO", "debt_ratio"},
		},
	})
}

// IncomeStatement retrieves income statement report rows for a stock.
func (c *Client) IncomeStatement(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DMSK_FN_INCOME",
		filter: symbolFilter(symbol),
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "report_date"},
			{"SECURITY_CODE", "symbol"},
			{"TOTAL_OPERATE_INCOME", "revenue"},
			{"OPERATE_COST", "operating_cost"},
			{"OPERATE_PROFIT", "operating_profit"},
			{"TOTAL_PROFIT", "total_profit"},
			{"PARENT_NETPROFIT", "net_profit"},
			{"DEDUCT_PARENT_NETPROFIT", "net_profit_excl_nonrecurring"},
			{"BASIC_EPS", "eps"},
		},
	})
}

// CashFlow retrieves cash flow statement report rows for a stock.
func (c *Client) CashFlow(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_DMSK_FN_CASHFLOW",
		filter: symbolFilter(symbol),
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "report_date"},
			{"SECURITY_CODE", "symbol"},
			{"NETCASH_OPERATE", "operating_cash_flow"},
			{"NETCASH_INVEST", "investing_cash_flow"},
			{"NETCASH_FINANCE", "financing_cash_flow"},
			{"CCE_ADD", "net_cash_increase"},
			{"SALES_SERVICES", "cash_from_sales"},
		},
	})
}

// FinancialMetrics retrieves the key-metric abstract of the three
// financial statements.
func (c *Client) FinancialMetrics(ctx context.Context, symbol string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_F10_FINANCE_MAINFINADATA",
		filter: fmt.Sprintf(`(SECUCODE="%s")`, secuCode(symbol)),
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "report_date"},
			{"SECURITY_CODE", "symbol"},
			{"EPSJB", "eps"},
			{"BPS", "bps"},
			{"TOTAL_OPERATE_INCOME", "revenue"},
			{"PARENT_NETPROFIT", "net_profit"},
			{"ROE_DILUTED", "roe"},
			{"XSMLL", "gross_margin"},
			{"ZCFZL", "debt_ratio"},
			{"TOTAL_OPERATE_INCOME_TZ", "revenue_yoy"},
			{"PARENT_NETPROFIT_TZ", "net_profit_yoy"},
		},
	})
}

// HSGTFlow retrieves the northbound/southbound connect flow history.
func (c *Client) HSGTFlow(ctx context.Context) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_MUTUAL_DEAL_HISTORY",
		sort:   "TRADE_DATE", sortType: "-1",
		columns: []dcColumn{
			{"TRADE_DATE", "date"},
			{"MUTUAL_TYPE", "channel"},
			{"BUY_AMT", "buy_amount"},
			{"SELL_AMT", "sell_amount"},
			{"NET_DEAL_AMT", "net_amount"},
			{"QUOTA_BALANCE", "quota_balance"},
			{"ACCUM_DEAL_AMT", "accumulated_amount"},
		},
	})
}

// IndexConstituents retrieves the constituent list of an index.
func (c *Client) IndexConstituents(ctx context.Context, indexCode string) (*market.Table, error) {
	return c.datacenter(ctx, dcQuery{
		report: "RPT_INDEX_TS_COMPONENT",
		filter: fmt.Sprintf(`(INDEX_CODE="%s")`, indexCode),
		sort:   "SECURITY_CODE", sortType: "1",
		columns: []dcColumn{
			{"INDEX_CODE", "index_code"},
			{"INDEX_NAME", "index_name"},
			{"SECURITY_CODE", "symbol"},
			{"SECURITY_NAME_ABBR", "name"},
			{"WEIGHT", "weight"},
			{"ADJUST_DATE", "adjust_date"},
		},
	})
}

// macroReports maps macro indicators onto their datacenter reports.
var macroReports = map[market.MacroIndicator]dcQuery{
	market.MacroMoneySupply: {
		report: "RPT_ECONOMY_CURRENCY_SUPPLY",
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "date"},
			{"BASIC_CURRENCY", "m2"},
			{"BASIC_CURRENCY_SAME", "m2_yoy"},
			{"CURRENCY", "m1"},
			{"CURRENCY_SAME", "m1_yoy"},
			{"FREE_CASH", "m0"},
			{"FREE_CASH_SAME", "m0_yoy"},
		},
	},
	market.MacroGDP: {
		report: "RPT_ECONOMY_GDP",
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "date"},
			{"DOMESTICL_PRODUCT_BASE", "gdp"},
			{"SUM_SAME", "gdp_yoy"},
			{"FIRST_PRODUCT_BASE", "primary_industry"},
			{"SECOND_PRODUCT_BASE", "secondary_industry"},
			{"THIRD_PRODUCT_BASE", "tertiary_industry"},
		},
	},
	market.MacroCPI: {
		report: "RPT_ECONOMY_CPI",
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "date"},
			{"NATIONAL_BASE", "cpi"},
			{"NATIONAL_SAME", "cpi_yoy"},
			{"NATIONAL_SEQUENTIAL", "cpi_mom"},
			{"NATIONAL_ACCUMULATE", "cpi_ytd"},
		},
	},
	market.MacroPMI: {
		report: "RPT_ECONOMY_PMI",
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "date"},
			{"MAKE_INDEX", "manufacturing_pmi"},
			{"MAKE_SAME", "manufacturing_pmi_yoy"},
			{"NMAKE_INDEX", "non_manufacturing_pmi"},
			{"NMAKE_SAME", "non_manufacturing_pmi_yoy"},
		},
	},
	market.MacroStockSummary: {
		report: "RPT_ECONOMY_STOCK_STATISTICS",
		sort:   "REPORT_DATE", sortType: "-1",
		columns: []dcColumn{
			{"REPORT_DATE", "date"},
			{"TOTAL_SHARES_SH", "sh_total_shares"},
			{"TOTAL_MARKE_SH", "sh_total_market_cap"},
			{"DEAL_AMOUNT_SH", "sh_amount"},
			{"TOTAL_SHARES_SZ", "sz_total_shares"},
			{"TOTAL_MARKE_SZ", "sz_total_market_cap"},
			{"DEAL_AMOUNT_SZ", "sz_amount"},
		},
	},
}

// Macro retrieves one macro-economic indicator series.
func (c *Client) Macro(ctx context.Context, indicator market.MacroIndicator) (*market.Table, error) {
	q, ok := macroReports[indicator]
	if !ok {
		return nil, fmt.Errorf("unsupported macro indicator %q", indicator)
	}
	return c.datacenter(ctx, q)
}

// secuCode formats a symbol with its exchange suffix (000001.SZ).
func secuCode(symbol string) string {
	switch {
	case len(symbol) > 0 && (symbol[0] == '6' || symbol[0] == '9' || symbol[0] == '5'):
		return symbol + ".SH"
	case len(symbol) > 0 && symbol[0] == '8' || len(symbol) > 0 && symbol[0] == '4':
		return symbol + ".BJ"
	default:
		return symbol + ".SZ"
	}
}
