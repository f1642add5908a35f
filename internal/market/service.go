package market

import (
	"context"
	"fmt"
	"time"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/errors"
)

// TableCache is the service-side view of the result cache. A nil cache
// disables caching.
type TableCache interface {
	Get(op string, params map[string]any) (*Table, bool)
	Put(op string, params map[string]any, table *Table)
}

// Service maps tool operations onto the upstream data-source clients,
// running each one through its fallback chain and caching the
// slow-moving categories.
type Service struct {
	src   Sources
	cache TableCache
	log   *common.Logger
	now   func() time.Time
}

// NewService creates a service over the given sources. cache may be nil.
func NewService(src Sources, cache TableCache, log *common.Logger) *Service {
	return &Service{src: src, cache: cache, log: log, now: time.Now}
}

// dispatch orders the sources, resolves their fetchers and runs the
// fallback chain.
func (s *Service) dispatch(ctx context.Context, preferred string, defaults []string, fetchers map[string]func(ctx context.Context) (*Table, error)) (*Table, error) {
	sources, err := orderSources(preferred, defaults)
	if err != nil {
		return nil, err
	}
	attempts, err := attemptsFor(sources, fetchers)
	if err != nil {
		return nil, err
	}
	table, source, err := Dispatch(ctx, s.log, attempts)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("source", source).Int("rows", table.Len()).Msg("Dispatch resolved")
	return table, nil
}

// cached wraps a fetch with a cache lookup keyed by operation parameters.
func (s *Service) cached(op string, params map[string]any, fetch func() (*Table, error)) (*Table, error) {
	if s.cache != nil {
		if table, ok := s.cache.Get(op, params); ok {
			s.log.Debug().Str("op", op).Msg("Cache hit")
			return table, nil
		}
	}
	table, err := fetch()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(op, params, table)
	}
	return table, nil
}

// validateInterval rejects intervals neither kline backend can serve,
// before any source is attempted.
func validateInterval(interval string) error {
	switch interval {
	case "", "minute", "hour", "day", "week", "month":
		return nil
	}
	return errors.InvalidParams(fmt.Sprintf("unsupported interval %q (want minute, hour, day, week or month)", interval))
}

// HistData retrieves candlestick history with optional indicator columns.
// recentN keeps only the latest rows, after indicators are computed over
// the full range.
func (s *Service) HistData(ctx context.Context, q HistQuery, source string, indicators []string, recentN int) (*Table, error) {
	if q.Symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	if err := validateInterval(q.Interval); err != nil {
		return nil, err
	}
	table, err := s.dispatch(ctx, source, []string{SourceEastmoney, SourceSina}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.Kline(ctx, q) },
		SourceSina:      func(ctx context.Context) (*Table, error) { return s.src.Sina.Kline(ctx, q) },
	})
	if err != nil {
		return nil, err
	}
	if err := ApplyIndicators(s.log, table, indicators); err != nil {
		return nil, errors.Internal(err)
	}
	if recentN > 0 {
		table = table.Tail(recentN)
	}
	return table, nil
}

// RealtimeData retrieves the quote for one stock, or the full market
// snapshot when symbol is empty.
func (s *Service) RealtimeData(ctx context.Context, symbol, source string) (*Table, error) {
	if symbol == "" {
		return s.dispatch(ctx, source, []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.Snapshot(ctx) },
		})
	}
	return s.dispatch(ctx, source, []string{SourceEastmoney, SourceXueqiu, SourceSina}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.Quote(ctx, symbol) },
		SourceXueqiu:    func(ctx context.Context) (*Table, error) { return s.src.Xueqiu.Quote(ctx, symbol) },
		SourceSina:      func(ctx context.Context) (*Table, error) { return s.src.Sina.Quote(ctx, symbol) },
	})
}

// NewsData retrieves recent news articles mentioning a stock.
func (s *Service) NewsData(ctx context.Context, symbol string, recentN int) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	table, err := s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.News(ctx, symbol) },
	})
	if err != nil {
		return nil, err
	}
	if recentN > 0 {
		table = table.Tail(recentN)
	}
	return table, nil
}

// FundFlow retrieves the daily capital flow history for a stock.
func (s *Service) FundFlow(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.FundFlow(ctx, symbol) },
	})
}

// SectorFundFlow retrieves capital flow rankings per industry or concept
// board.
func (s *Service) SectorFundFlow(ctx context.Context, kind BoardKind) (*Table, error) {
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.SectorFundFlow(ctx, kind) },
	})
}

// MarginData retrieves the margin trading detail history for a stock.
func (s *Service) MarginData(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.MarginDetail(ctx, symbol) },
	})
}

// HSGTFlow retrieves the Stock Connect northbound/southbound flow history.
func (s *Service) HSGTFlow(ctx context.Context) (*Table, error) {
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.HSGTFlow(ctx) },
	})
}

// Billboard retrieves the dragon-tiger list for a date range. Missing
// dates default to today so a bare call returns the current session.
func (s *Service) Billboard(ctx context.Context, startDate, endDate string) (*Table, error) {
	if endDate == "" {
		endDate = s.now().Format("2006-01-02")
	}
	if startDate == "" {
		startDate = endDate
	}
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) {
			return s.src.Eastmoney.Billboard(ctx, startDate, endDate)
		},
	})
}

// BlockTrades retrieves the block trade history for a stock.
func (s *Service) BlockTrades(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.BlockTrades(ctx, symbol) },
	})
}

// Dividends retrieves the dividend and split history for a stock.
func (s *Service) Dividends(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.cached("dividends", map[string]any{"symbol": symbol}, func() (*Table, error) {
		return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.Dividends(ctx, symbol) },
		})
	})
}

// TechRank retrieves a technical screen ranking.
func (s *Service) TechRank(ctx context.Context, screen Screen, limit int) (*Table, error) {
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.RankScreen(ctx, screen, limit) },
	})
}

// statement runs one of the three financial statement operations, all of
// which share the sina-first fallback order and the cache policy.
func (s *Service) statement(ctx context.Context, op, symbol, source string, recentN int,
	fromSina, fromEastmoney func(ctx context.Context, symbol string) (*Table, error)) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	table, err := s.cached(op, map[string]any{"symbol": symbol, "source": source}, func() (*Table, error) {
		return s.dispatch(ctx, source, []string{SourceSina, SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceSina:      func(ctx context.Context) (*Table, error) { return fromSina(ctx, symbol) },
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return fromEastmoney(ctx, symbol) },
		})
	})
	if err != nil {
		return nil, err
	}
	// Statements are sorted newest first, so recentN takes the head.
	if recentN > 0 {
		table = table.Head(recentN)
	}
	return table, nil
}

// BalanceSheet retrieves the balance sheet history for a stock.
func (s *Service) BalanceSheet(ctx context.Context, symbol, source string, recentN int) (*Table, error) {
	return s.statement(ctx, "balance_sheet", symbol, source, recentN,
		s.src.Sina.BalanceSheet, s.src.Eastmoney.BalanceSheet)
}

// IncomeStatement retrieves the income statement history for a stock.
func (s *Service) IncomeStatement(ctx context.Context, symbol, source string, recentN int) (*Table, error) {
	return s.statement(ctx, "income_statement", symbol, source, recentN,
		s.src.Sina.IncomeStatement, s.src.Eastmoney.IncomeStatement)
}

// CashFlow retrieves the cash flow statement history for a stock.
func (s *Service) CashFlow(ctx context.Context, symbol, source string, recentN int) (*Table, error) {
	return s.statement(ctx, "cash_flow", symbol, source, recentN,
		s.src.Sina.CashFlow, s.src.Eastmoney.CashFlow)
}

// FinancialMetrics retrieves the key metric summary across the three
// statements.
func (s *Service) FinancialMetrics(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.cached("financial_metrics", map[string]any{"symbol": symbol}, func() (*Table, error) {
		return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.FinancialMetrics(ctx, symbol) },
		})
	})
}

// InnerTrades retrieves insider shareholding changes for a stock.
func (s *Service) InnerTrades(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, "", []string{SourceXueqiu}, map[string]func(ctx context.Context) (*Table, error){
		SourceXueqiu: func(ctx context.Context) (*Table, error) { return s.src.Xueqiu.InnerTrades(ctx, symbol) },
	})
}

// ShareholderInfo retrieves the shareholder count history for a stock.
func (s *Service) ShareholderInfo(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.ShareholderCount(ctx, symbol) },
	})
}

// ProductInfo retrieves the main business composition for a stock.
func (s *Service) ProductInfo(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.cached("product_info", map[string]any{"symbol": symbol}, func() (*Table, error) {
		return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.BusinessComposition(ctx, symbol) },
		})
	})
}

// StockBasicInfo retrieves the basic company profile for a stock.
func (s *Service) StockBasicInfo(ctx context.Context, symbol, source string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, source, []string{SourceEastmoney, SourceXueqiu}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.StockInfo(ctx, symbol) },
		SourceXueqiu:    func(ctx context.Context) (*Table, error) { return s.src.Xueqiu.CompanyInfo(ctx, symbol) },
	})
}

// InvestorSentiment retrieves the four retail and institutional
// sentiment series for a stock, merged with an indicator discriminator
// column. Individual series failures leave gaps rather than failing the
// whole result; the operation fails only when every series fails.
func (s *Service) InvestorSentiment(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}

	series := []struct {
		label string
		fetch func(ctx context.Context, symbol string) (*Table, error)
	}{
		{"retail_attention", s.src.Eastmoney.RetailAttention},
		{"retail_sentiment", s.src.Eastmoney.RetailSentiment},
		{"institution_research", s.src.Eastmoney.InstitutionResearch},
		{"institution_participation", s.src.Eastmoney.InstitutionParticipation},
	}

	var (
		parts    []ConcatPart
		failures []string
	)
	for _, sr := range series {
		table, err := sr.fetch(ctx, symbol)
		if err != nil {
			s.log.Debug().Str("series", sr.label).Err(err).Msg("Sentiment series failed")
			failures = append(failures, errors.SourceUnavailable(sr.label, err).Error())
			continue
		}
		parts = append(parts, ConcatPart{Label: sr.label, Table: table})
	}

	merged := Concat("indicator", parts)
	if merged.Empty() && len(failures) > 0 {
		return nil, errors.AllSourcesFailed(failures)
	}
	return merged, nil
}

// MacroData retrieves a macro economic series, or all of them merged
// when indicator is MacroAll.
func (s *Service) MacroData(ctx context.Context, indicator MacroIndicator, source string) (*Table, error) {
	if indicator == MacroAll {
		var parts []ConcatPart
		var failures []string
		for _, ind := range MacroIndicators() {
			table, err := s.MacroData(ctx, ind, source)
			if err != nil {
				s.log.Debug().Str("indicator", string(ind)).Err(err).Msg("Macro series failed")
				failures = append(failures, errors.SourceUnavailable(string(ind), err).Error())
				continue
			}
			parts = append(parts, ConcatPart{Label: string(ind), Table: table})
		}
		merged := Concat("indicator", parts)
		if merged.Empty() && len(failures) > 0 {
			return nil, errors.AllSourcesFailed(failures)
		}
		return merged, nil
	}

	known := false
	for _, ind := range MacroIndicators() {
		if ind == indicator {
			known = true
			break
		}
	}
	if !known {
		return nil, errors.InvalidParams("unknown macro indicator " + string(indicator))
	}

	return s.cached("macro_data", map[string]any{"indicator": string(indicator), "source": source}, func() (*Table, error) {
		return s.dispatch(ctx, source, []string{SourceSina, SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceSina:      func(ctx context.Context) (*Table, error) { return s.src.Sina.Macro(ctx, indicator) },
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.Macro(ctx, indicator) },
		})
	})
}

// IndexHistData retrieves candlestick history for an index.
func (s *Service) IndexHistData(ctx context.Context, q HistQuery, source string, recentN int) (*Table, error) {
	if q.Symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	if err := validateInterval(q.Interval); err != nil {
		return nil, err
	}
	table, err := s.dispatch(ctx, source, []string{SourceEastmoney, SourceSina}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.IndexKline(ctx, q) },
		SourceSina:      func(ctx context.Context) (*Table, error) { return s.src.Sina.IndexKline(ctx, q) },
	})
	if err != nil {
		return nil, err
	}
	if recentN > 0 {
		table = table.Tail(recentN)
	}
	return table, nil
}

// IndexRealtimeData retrieves the current quote for an index.
func (s *Service) IndexRealtimeData(ctx context.Context, symbol string) (*Table, error) {
	if symbol == "" {
		return nil, errors.InvalidParams("symbol is required")
	}
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.IndexQuote(ctx, symbol) },
	})
}

// IndexConstituents retrieves the constituent list of an index.
func (s *Service) IndexConstituents(ctx context.Context, indexCode string) (*Table, error) {
	if indexCode == "" {
		return nil, errors.InvalidParams("index code is required")
	}
	return s.cached("index_constituents", map[string]any{"index": indexCode}, func() (*Table, error) {
		return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceEastmoney: func(ctx context.Context) (*Table, error) {
				return s.src.Eastmoney.IndexConstituents(ctx, indexCode)
			},
		})
	})
}

// BoardList retrieves the industry or concept board ranking.
func (s *Service) BoardList(ctx context.Context, kind BoardKind) (*Table, error) {
	return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
		SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.BoardList(ctx, kind) },
	})
}

// ETFList retrieves the exchange traded fund listing.
func (s *Service) ETFList(ctx context.Context) (*Table, error) {
	return s.cached("etf_list", nil, func() (*Table, error) {
		return s.dispatch(ctx, "", []string{SourceEastmoney}, map[string]func(ctx context.Context) (*Table, error){
			SourceEastmoney: func(ctx context.Context) (*Table, error) { return s.src.Eastmoney.ETFList(ctx) },
		})
	})
}

// TradeCalendar retrieves the exchange trading day list, optionally
// filtered to one year.
func (s *Service) TradeCalendar(ctx context.Context, year string) (*Table, error) {
	table, err := s.cached("trade_calendar", nil, func() (*Table, error) {
		return s.dispatch(ctx, "", []string{SourceSina}, map[string]func(ctx context.Context) (*Table, error){
			SourceSina: func(ctx context.Context) (*Table, error) { return s.src.Sina.TradeCalendar(ctx) },
		})
	})
	if err != nil {
		return nil, err
	}
	if year == "" {
		return table, nil
	}

	idx := table.ColumnIndex("trade_date")
	filtered := NewTable(table.Columns...)
	for _, row := range table.Rows {
		if date, ok := row[idx].(string); ok && len(date) >= 4 && date[:4] == year {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered, nil
}

// TimeInfo reports the current time and the most recent trading day.
func (s *Service) TimeInfo(ctx context.Context) (*TimeInfo, error) {
	calendar, err := s.TradeCalendar(ctx, "")
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &TimeInfo{
		ISOFormat:      now.Format(time.RFC3339),
		Timestamp:      float64(now.UnixNano()) / float64(time.Second),
		LastTradingDay: LastTradingDay(calendar, now),
	}, nil
}
