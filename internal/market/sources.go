package market

import "context"

// Source name constants used in fallback chains and tool parameters.
const (
	SourceEastmoney = "eastmoney"
	SourceSina      = "sina"
	SourceXueqiu    = "xueqiu"
)

// EastmoneySource is the consumer-side interface over the Eastmoney
// client. It carries most data categories; the service falls back to the
// other sources where they overlap.
type EastmoneySource interface {
	Kline(ctx context.Context, q HistQuery) (*Table, error)
	IndexKline(ctx context.Context, q HistQuery) (*Table, error)
	Quote(ctx context.Context, symbol string) (*Table, error)
	IndexQuote(ctx context.Context, symbol string) (*Table, error)
	Snapshot(ctx context.Context) (*Table, error)
	StockInfo(ctx context.Context, symbol string) (*Table, error)
	News(ctx context.Context, symbol string) (*Table, error)
	FundFlow(ctx context.Context, symbol string) (*Table, error)
	SectorFundFlow(ctx context.Context, kind BoardKind) (*Table, error)
	HSGTFlow(ctx context.Context) (*Table, error)
	MarginDetail(ctx context.Context, symbol string) (*Table, error)
	Billboard(ctx context.Context, startDate, endDate string) (*Table, error)
	BlockTrades(ctx context.Context, symbol string) (*Table, error)
	Dividends(ctx context.Context, symbol string) (*Table, error)
	ShareholderCount(ctx context.Context, symbol string) (*Table, error)
	RetailAttention(ctx context.Context, symbol string) (*Table, error)
	RetailSentiment(ctx context.Context, symbol string) (*Table, error)
	InstitutionResearch(ctx context.Context, symbol string) (*Table, error)
	InstitutionParticipation(ctx context.Context, symbol string) (*Table, error)
	BusinessComposition(ctx context.Context, symbol string) (*Table, error)
	BalanceSheet(ctx context.Context, symbol string) (*Table, error)
	IncomeStatement(ctx context.Context, symbol string) (*Table, error)
	CashFlow(ctx context.Context, symbol string) (*Table, error)
	FinancialMetrics(ctx context.Context, symbol string) (*Table, error)
	Macro(ctx context.Context, indicator MacroIndicator) (*Table, error)
	BoardList(ctx context.Context, kind BoardKind) (*Table, error)
	IndexConstituents(ctx context.Context, indexCode string) (*Table, error)
	ETFList(ctx context.Context) (*Table, error)
	RankScreen(ctx context.Context, screen Screen, limit int) (*Table, error)
}

// SinaSource is the consumer-side interface over the Sina finance client.
type SinaSource interface {
	Kline(ctx context.Context, q HistQuery) (*Table, error)
	IndexKline(ctx context.Context, q HistQuery) (*Table, error)
	Quote(ctx context.Context, symbol string) (*Table, error)
	BalanceSheet(ctx context.Context, symbol string) (*Table, error)
	IncomeStatement(ctx context.Context, symbol string) (*Table, error)
	CashFlow(ctx context.Context, symbol string) (*Table, error)
	Macro(ctx context.Context, indicator MacroIndicator) (*Table, error)
	TradeCalendar(ctx context.Context) (*Table, error)
}

// XueqiuSource is the consumer-side interface over the Xueqiu client.
type XueqiuSource interface {
	Quote(ctx context.Context, symbol string) (*Table, error)
	InnerTrades(ctx context.Context, symbol string) (*Table, error)
	CompanyInfo(ctx context.Context, symbol string) (*Table, error)
}

// Sources bundles the upstream clients the service dispatches over.
type Sources struct {
	Eastmoney EastmoneySource
	Sina      SinaSource
	Xueqiu    XueqiuSource
}
