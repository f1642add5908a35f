package xueqiu

import (
	"context"
	"net/url"
	"time"

	"github.com/hsliu/cnstock/internal/market"
)

type quoteData struct {
	Quote struct {
		Symbol        string   `json:"symbol"`
		Name          string   `json:"name"`
		Current       *float64 `json:"current"`
		Open          *float64 `json:"open"`
		High          *float64 `json:"high"`
		Low           *float64 `json:"low"`
		LastClose     *float64 `json:"last_close"`
		Volume        *float64 `json:"volume"`
		Amount        *float64 `json:"amount"`
		TurnoverRate  *float64 `json:"turnover_rate"`
		Chg           *float64 `json:"chg"`
		Percent       *float64 `json:"percent"`
		MarketCapital *float64 `json:"market_capital"`
		PeTTM         *float64 `json:"pe_ttm"`
		Pb            *float64 `json:"pb"`
	} `json:"quote"`
}

var quoteColumns = []string{
	"symbol", "name", "price", "open", "high", "low", "prev_close",
	"volume", "amount", "turnover", "change", "pct_change",
	"market_cap", "pe_ttm", "pb",
}

// Quote retrieves the real-time quote for a single stock.
func (c *Client) Quote(ctx context.Context, symbol string) (*market.Table, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("extend", "detail")

	var data quoteData
	if err := c.get(ctx, "/v5/stock/quote.json", params, &data); err != nil {
		return nil, err
	}

	table := market.NewTable(quoteColumns...)
	q := data.Quote
	if q.Symbol == "" {
		return table, nil
	}
	table.Append(
		q.Symbol, q.Name,
		floatCell(q.Current), floatCell(q.Open), floatCell(q.High), floatCell(q.Low),
		floatCell(q.LastClose), floatCell(q.Volume), floatCell(q.Amount),
		floatCell(q.TurnoverRate), floatCell(q.Chg), floatCell(q.Percent),
		floatCell(q.MarketCapital), floatCell(q.PeTTM), floatCell(q.Pb),
	)
	return table, nil
}

type holderChgData struct {
	Items []struct {
		HolderName string   `json:"holder_name"`
		ChgDate    int64    `json:"chg_date"`
		ChgShares  *float64 `json:"chg_shares"`
		AvgPrice   *float64 `json:"avg_price"`
		ChgAmount  *float64 `json:"chg_amount"`
		ChgReason  string   `json:"chg_reason"`
		HeldShares *float64 `json:"held_shares"`
		Position   string   `json:"position_name"`
	} `json:"items"`
}

var innerTradeColumns = []string{
	"holder_name", "position", "change_date", "change_shares",
	"avg_price", "change_amount", "held_shares", "reason",
}

// InnerTrades retrieves director, supervisor and executive shareholding
// changes for a stock.
func (c *Client) InnerTrades(ctx context.Context, symbol string) (*market.Table, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("page", "1")
	params.Set("size", "200")

	var data holderChgData
	if err := c.get(ctx, "/v5/stock/f10/cn/skholderchg.json", params, &data); err != nil {
		return nil, err
	}

	table := market.NewTable(innerTradeColumns...)
	for _, item := range data.Items {
		table.Append(
			item.HolderName, item.Position, millisDate(item.ChgDate),
			floatCell(item.ChgShares), floatCell(item.AvgPrice),
			floatCell(item.ChgAmount), floatCell(item.HeldShares), item.ChgReason,
		)
	}
	return table, nil
}

type companyData struct {
	Company struct {
		OrgNameCn       string   `json:"org_name_cn"`
		OrgShortNameCn  string   `json:"org_short_name_cn"`
		MainOperation   string   `json:"main_operation_business"`
		OperatingScope  string   `json:"operating_scope"`
		EstablishedDate int64    `json:"established_date"`
		ListedDate      int64    `json:"listed_date"`
		RegAsset        *float64 `json:"reg_asset"`
		StaffNum        *float64 `json:"staff_num"`
		Chairman        string   `json:"chairman"`
		GeneralManager  string   `json:"general_manager"`
		LegalRep        string   `json:"legal_representative"`
		Website         string   `json:"org_website"`
		Address         string   `json:"office_address_cn"`
		Introduction    string   `json:"org_cn_introduction"`
	} `json:"company"`
}

// CompanyInfo retrieves the company profile as item/value pairs.
func (c *Client) CompanyInfo(ctx context.Context, symbol string) (*market.Table, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))

	var data companyData
	if err := c.get(ctx, "/v5/stock/f10/cn/company.json", params, &data); err != nil {
		return nil, err
	}

	co := data.Company
	table := market.NewTable("item", "value")
	if co.OrgNameCn == "" {
		return table, nil
	}
	table.Append("name", co.OrgNameCn)
	table.Append("short_name", co.OrgShortNameCn)
	table.Append("main_business", co.MainOperation)
	table.Append("operating_scope", co.OperatingScope)
	table.Append("established_date", millisDate(co.EstablishedDate))
	table.Append("listed_date", millisDate(co.ListedDate))
	table.Append("registered_capital", floatCell(co.RegAsset))
	table.Append("staff_count", floatCell(co.StaffNum))
	table.Append("chairman", co.Chairman)
	table.Append("general_manager", co.GeneralManager)
	table.Append("legal_representative", co.LegalRep)
	table.Append("website", co.Website)
	table.Append("address", co.Address)
	table.Append("introduction", co.Introduction)
	return table, nil
}

func floatCell(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// millisDate formats an epoch-milliseconds timestamp as YYYY-MM-DD.
func millisDate(ms int64) any {
	if ms <= 0 {
		return nil
	}
	return time.UnixMilli(ms).In(cst).Format("2006-01-02")
}

// cst is the exchange timezone. A fixed offset avoids a dependency on
// the host zone database.
var cst = time.FixedZone("CST", 8*60*60)
