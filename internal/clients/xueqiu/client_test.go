package xueqiu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"600000", "SH600000"},
		{"900901", "SH900901"},
		{"510300", "SH510300"},
		{"000001", "SZ000001"},
		{"300750", "SZ300750"},
		{"830799", "BJ830799"},
		{"430047", "BJ430047"},
		{"sh600000", "SH600000"},
		{"SZ000001", "SZ000001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, marketSymbol(tt.symbol), "marketSymbol(%q)", tt.symbol)
	}
}

func TestMillisDate(t *testing.T) {
	// 1999-11-10 00:00:00 +08:00
	assert.Equal(t, "1999-11-10", millisDate(942163200000))
	assert.Nil(t, millisDate(0))
}

func TestFloatCell(t *testing.T) {
	v := 10.5
	assert.Equal(t, 10.5, floatCell(&v))
	assert.Nil(t, floatCell(nil))
}

func testClient(url string) *Client {
	return NewClient(WithBaseURL(url), WithRateLimit(1000))
}

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/stock/quote.json", r.URL.Path)
		assert.Equal(t, "SH600000", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"data":{"quote":{
			"symbol":"SH600000","name":"浦发银行","current":10.5,"open":10.0,
			"high":10.6,"low":9.9,"last_close":10.0,"volume":100000,
			"amount":1050000.0,"turnover_rate":1.2,"chg":0.5,"percent":5.0,
			"market_capital":308000000000,"pe_ttm":6.2,"pb":null
		}},"error_code":0,"error_description":""}`))
	}))
	defer srv.Close()

	table, err := testClient(srv.URL).Quote(context.Background(), "600000")
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, "SH600000", row[0])
	assert.Equal(t, "浦发银行", row[1])
	assert.Equal(t, 10.5, row[2])
	assert.Equal(t, 10.0, row[6])
	assert.Nil(t, row[14], "null pb should map to nil")
}

func TestQuoteUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"quote":{}},"error_code":0,"error_description":""}`))
	}))
	defer srv.Close()

	table, err := testClient(srv.URL).Quote(context.Background(), "999999")
	require.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{},"error_code":400016,"error_description":"参数错误"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Quote(context.Background(), "600000")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "参数错误", apiErr.Message)
}

func TestInnerTrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/stock/f10/cn/skholderchg.json", r.URL.Path)
		w.Write([]byte(`{"data":{"items":[
			{"holder_name":"张三","position_name":"董事","chg_date":1735747200000,
			 "chg_shares":-10000,"avg_price":10.5,"chg_amount":-105000,
			 "chg_reason":"竞价交易","held_shares":90000}
		]},"error_code":0,"error_description":""}`))
	}))
	defer srv.Close()

	table, err := testClient(srv.URL).InnerTrades(context.Background(), "600000")
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, "张三", row[0])
	assert.Equal(t, "董事", row[1])
	assert.Equal(t, "2025-01-02", row[2])
	assert.Equal(t, -10000.0, row[3])
}

func TestCompanyInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/stock/f10/cn/company.json", r.URL.Path)
		w.Write([]byte(`{"data":{"company":{
			"org_name_cn":"上海浦东发展银行股份有限公司","org_short_name_cn":"浦发银行",
			"main_operation_business":"商业银行业务","listed_date":942163200000,
			"staff_num":63000,"chairman":"某某"
		}},"error_code":0,"error_description":""}`))
	}))
	defer srv.Close()

	table, err := testClient(srv.URL).CompanyInfo(context.Background(), "600000")
	require.NoError(t, err)
	require.Equal(t, 14, table.Len())

	assert.Equal(t, []any{"name", "上海浦东发展银行股份有限公司"}, table.Rows[0])
	assert.Equal(t, []any{"listed_date", "1999-11-10"}, table.Rows[5])
}

func TestCompanyInfoUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"company":{}},"error_code":0,"error_description":""}`))
	}))
	defer srv.Close()

	table, err := testClient(srv.URL).CompanyInfo(context.Background(), "999999")
	require.NoError(t, err)
	assert.True(t, table.Empty())
}
