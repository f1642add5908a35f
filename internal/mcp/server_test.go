package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/market"
)

// stubEastmoney serves the same fixed table for every data category.
type stubEastmoney struct {
	table *market.Table
	err   error
}

func (s *stubEastmoney) result() (*market.Table, error) { return s.table, s.err }

func (s *stubEastmoney) Kline(context.Context, market.HistQuery) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) IndexKline(context.Context, market.HistQuery) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) Quote(context.Context, string) (*market.Table, error)      { return s.result() }
func (s *stubEastmoney) IndexQuote(context.Context, string) (*market.Table, error) { return s.result() }
func (s *stubEastmoney) Snapshot(context.Context) (*market.Table, error)           { return s.result() }
func (s *stubEastmoney) StockInfo(context.Context, string) (*market.Table, error)  { return s.result() }
func (s *stubEastmoney) News(context.Context, string) (*market.Table, error)       { return s.result() }
func (s *stubEastmoney) FundFlow(context.Context, string) (*market.Table, error)   { return s.result() }
func (s *stubEastmoney) SectorFundFlow(context.Context, market.BoardKind) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) HSGTFlow(context.Context) (*market.Table, error)             { return s.result() }
func (s *stubEastmoney) MarginDetail(context.Context, string) (*market.Table, error) { return s.result() }
func (s *stubEastmoney) Billboard(context.Context, string, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) BlockTrades(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) Dividends(context.Context, string) (*market.Table, error) { return s.result() }
func (s *stubEastmoney) ShareholderCount(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) RetailAttention(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) RetailSentiment(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) InstitutionResearch(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) InstitutionParticipation(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) BusinessComposition(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) BalanceSheet(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) IncomeStatement(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) CashFlow(context.Context, string) (*market.Table, error) { return s.result() }
func (s *stubEastmoney) FinancialMetrics(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) Macro(context.Context, market.MacroIndicator) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) BoardList(context.Context, market.BoardKind) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) IndexConstituents(context.Context, string) (*market.Table, error) {
	return s.result()
}
func (s *stubEastmoney) ETFList(context.Context) (*market.Table, error) { return s.result() }
func (s *stubEastmoney) RankScreen(context.Context, market.Screen, int) (*market.Table, error) {
	return s.result()
}

type stubSina struct {
	table    *market.Table
	calendar *market.Table
	err      error
}

func (s *stubSina) Kline(context.Context, market.HistQuery) (*market.Table, error) {
	return s.table, s.err
}
func (s *stubSina) IndexKline(context.Context, market.HistQuery) (*market.Table, error) {
	return s.table, s.err
}
func (s *stubSina) Quote(context.Context, string) (*market.Table, error) { return s.table, s.err }
func (s *stubSina) BalanceSheet(context.Context, string) (*market.Table, error) {
	return s.table, s.err
}
func (s *stubSina) IncomeStatement(context.Context, string) (*market.Table, error) {
	return s.table, s.err
}
func (s *stubSina) CashFlow(context.Context, string) (*market.Table, error) { return s.table, s.err }
func (s *stubSina) Macro(context.Context, market.MacroIndicator) (*market.Table, error) {
	return s.table, s.err
}
func (s *stubSina) TradeCalendar(context.Context) (*market.Table, error) { return s.calendar, s.err }

type stubXueqiu struct {
	table *market.Table
	err   error
}

func (s *stubXueqiu) Quote(context.Context, string) (*market.Table, error)       { return s.table, s.err }
func (s *stubXueqiu) InnerTrades(context.Context, string) (*market.Table, error) { return s.table, s.err }
func (s *stubXueqiu) CompanyInfo(context.Context, string) (*market.Table, error) {
	return s.table, s.err
}

func sampleKlines() *market.Table {
	table := market.NewTable("date", "open", "high", "low", "close", "volume")
	table.Append("2025-01-02", 10.0, 10.6, 9.9, 10.5, 100000.0)
	table.Append("2025-01-03", 10.5, 10.7, 10.3, 10.4, 90000.0)
	return table
}

func longKlines(n int) *market.Table {
	table := market.NewTable("date", "open", "high", "low", "close", "volume")
	for i := 0; i < n; i++ {
		price := 10.0 + float64(i%7)*0.1
		table.Append(fmt.Sprintf("2025-01-%02d", i+1), price-0.1, price+0.2, price-0.2, price, 100000.0)
	}
	return table
}

func sampleCalendar() *market.Table {
	table := market.NewTable("trade_date")
	table.Append("2025-01-02")
	table.Append("2025-01-03")
	return table
}

func newTestServer() *Server {
	src := market.Sources{
		Eastmoney: &stubEastmoney{table: sampleKlines()},
		Sina:      &stubSina{table: sampleKlines(), calendar: sampleCalendar()},
		Xueqiu:    &stubXueqiu{table: sampleKlines()},
	}
	svc := market.NewService(src, nil, common.NewSilentLogger())
	return NewServerWithService(svc, common.NewSilentLogger())
}

func newTestRequest(toolName string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

func getResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content type = %T, want text", result.Content[0])
	}
	return text.Text
}

func TestHandleHistData(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_hist_data", map[string]interface{}{"symbol": "600000"})

	result, err := s.handleHistData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(getResultText(t, result)), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["date"] != "2025-01-02" || records[0]["close"] != 10.5 {
		t.Errorf("first record = %v", records[0])
	}
}

func TestHandleHistDataIndicatorsCommaString(t *testing.T) {
	src := market.Sources{
		Eastmoney: &stubEastmoney{table: longKlines(40)},
		Sina:      &stubSina{},
		Xueqiu:    &stubXueqiu{},
	}
	svc := market.NewService(src, nil, common.NewSilentLogger())
	s := NewServerWithService(svc, common.NewSilentLogger())

	req := newTestRequest("get_hist_data", map[string]interface{}{
		"symbol":          "600000",
		"indicators_list": "SMA, EMA",
	})
	result, err := s.handleHistData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(getResultText(t, result)), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 40 {
		t.Fatalf("got %d records, want 40", len(records))
	}
	last := records[len(records)-1]
	for _, key := range []string{"sma", "ema"} {
		if _, ok := last[key]; !ok {
			t.Errorf("missing indicator column %q in %v", key, last)
		}
	}
}

func TestHandleHistDataMissingSymbol(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_hist_data", map[string]interface{}{})

	result, err := s.handleHistData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(getResultText(t, result)), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Error.Code != "INVALID_PARAMS" {
		t.Errorf("code = %q, want INVALID_PARAMS", parsed.Error.Code)
	}
}

func TestHandleHistDataCSVOutput(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_hist_data", map[string]interface{}{
		"symbol":        "600000",
		"output_format": "csv",
	})

	result, err := s.handleHistData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	text := getResultText(t, result)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d csv lines, want 3", len(lines))
	}
	if lines[0] != "date,open,high,low,close,volume" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestHandleHistDataUnsupportedFormat(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_hist_data", map[string]interface{}{
		"symbol":        "600000",
		"output_format": "yaml",
	})

	result, err := s.handleHistData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(getResultText(t, result), "UNSUPPORTED_FORMAT") {
		t.Errorf("result = %q", getResultText(t, result))
	}
}

func TestHandleHistDataAllSourcesFailed(t *testing.T) {
	src := market.Sources{
		Eastmoney: &stubEastmoney{err: context.DeadlineExceeded},
		Sina:      &stubSina{err: context.DeadlineExceeded},
		Xueqiu:    &stubXueqiu{err: context.DeadlineExceeded},
	}
	svc := market.NewService(src, nil, common.NewSilentLogger())
	s := NewServerWithService(svc, common.NewSilentLogger())

	req := newTestRequest("get_hist_data", map[string]interface{}{"symbol": "600000"})
	result, err := s.handleHistData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(getResultText(t, result), "ALL_SOURCES_FAILED") {
		t.Errorf("result = %q", getResultText(t, result))
	}
}

func TestHandleRealtimeDataSnapshot(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_realtime_data", map[string]interface{}{})

	result, err := s.handleRealtimeData(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(getResultText(t, result)), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestHandleSectorFundFlowInvalidKind(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_sector_fund_flow", map[string]interface{}{
		"sector_type": "region",
	})

	result, err := s.handleSectorFundFlow(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(getResultText(t, result), "INVALID_PARAMS") {
		t.Errorf("result = %q", getResultText(t, result))
	}
}

func TestHandleTimeInfo(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_time_info", map[string]interface{}{})

	result, err := s.handleTimeInfo(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(getResultText(t, result)), &parsed); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"iso_format", "timestamp", "last_trading_day"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("missing key %q in %v", key, parsed)
		}
	}
	if parsed["last_trading_day"] != "2025-01-03" {
		t.Errorf("last_trading_day = %v", parsed["last_trading_day"])
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer()
	req := newTestRequest("get_version", map[string]interface{}{})

	result, err := s.handleVersion(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(getResultText(t, result)), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed["name"] != serverName {
		t.Errorf("name = %v", parsed["name"])
	}
	if _, ok := parsed["version"]; !ok {
		t.Error("missing version")
	}
}
