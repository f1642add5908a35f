package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hsliu/cnstock/internal/format"
	"github.com/hsliu/cnstock/internal/market"
)

// withOutputFormat is the shared output_format parameter.
func withOutputFormat() mcp.ToolOption {
	return mcp.WithString("output_format",
		mcp.Description("Output encoding for the result table (default: json)"),
		mcp.Enum(format.Formats()...))
}

func (s *Server) registerMarketTools() {
	// get_hist_data
	s.mcp.AddTool(mcp.NewTool("get_hist_data",
		mcp.WithDescription("Get historical candlestick data for a stock, with optional technical indicator columns"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithString("interval",
			mcp.Description("Time interval (default: day)"),
			mcp.Enum("minute", "hour", "day", "week", "month")),
		mcp.WithNumber("interval_multiplier",
			mcp.Description("Interval multiplier (default: 1)")),
		mcp.WithString("start_date",
			mcp.Description("Start date in YYYY-MM-DD format")),
		mcp.WithString("end_date",
			mcp.Description("End date in YYYY-MM-DD format")),
		mcp.WithString("adjust",
			mcp.Description("Price adjustment (default: none)"),
			mcp.Enum("none", "qfq", "hfq")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceEastmoney, market.SourceSina)),
		mcp.WithArray("indicators_list",
			mcp.Description("Technical indicators to add, as a list or a comma-separated string (e.g. SMA, MACD, BOLL)"),
			mcp.WithStringItems()),
		mcp.WithNumber("recent_n",
			mcp.Description("Number of most recent records to return (default: 100)")),
		withOutputFormat(),
	), s.handleHistData)

	// get_realtime_data
	s.mcp.AddTool(mcp.NewTool("get_realtime_data",
		mcp.WithDescription("Get real-time quote for a stock, or the full market snapshot when symbol is omitted"),
		mcp.WithString("symbol",
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceEastmoney, market.SourceXueqiu, market.SourceSina)),
		withOutputFormat(),
	), s.handleRealtimeData)

	// get_news_data
	s.mcp.AddTool(mcp.NewTool("get_news_data",
		mcp.WithDescription("Get recent news articles mentioning a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithNumber("recent_n",
			mcp.Description("Number of most recent records to return (default: 10)")),
		withOutputFormat(),
	), s.handleNewsData)

	// get_fund_flow
	s.mcp.AddTool(mcp.NewTool("get_fund_flow",
		mcp.WithDescription("Get the daily capital flow history for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleFundFlow)

	// get_sector_fund_flow
	s.mcp.AddTool(mcp.NewTool("get_sector_fund_flow",
		mcp.WithDescription("Get capital flow rankings per industry or concept board"),
		mcp.WithString("sector_type",
			mcp.Description("Board taxonomy (default: industry)"),
			mcp.Enum(string(market.BoardIndustry), string(market.BoardConcept))),
		withOutputFormat(),
	), s.handleSectorFundFlow)

	// get_margin_data
	s.mcp.AddTool(mcp.NewTool("get_margin_data",
		mcp.WithDescription("Get the margin trading and short selling detail history for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleMarginData)

	// get_hsgt_flow
	s.mcp.AddTool(mcp.NewTool("get_hsgt_flow",
		mcp.WithDescription("Get the Stock Connect cross-border capital flow history"),
		withOutputFormat(),
	), s.handleHSGTFlow)

	// get_lhb_detail
	s.mcp.AddTool(mcp.NewTool("get_lhb_detail",
		mcp.WithDescription("Get the dragon-tiger billboard detail for a date range"),
		mcp.WithString("start_date",
			mcp.Description("Start date in YYYY-MM-DD format (default: today)")),
		mcp.WithString("end_date",
			mcp.Description("End date in YYYY-MM-DD format (default: today)")),
		withOutputFormat(),
	), s.handleBillboard)

	// get_block_trades
	s.mcp.AddTool(mcp.NewTool("get_block_trades",
		mcp.WithDescription("Get the block trade history for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleBlockTrades)

	// get_dividend_history
	s.mcp.AddTool(mcp.NewTool("get_dividend_history",
		mcp.WithDescription("Get the dividend and share bonus history for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleDividends)

	// get_tech_rank
	s.mcp.AddTool(mcp.NewTool("get_tech_rank",
		mcp.WithDescription("Get a technical screen ranking across the A-share market"),
		mcp.WithString("screen",
			mcp.Required(),
			mcp.Description("Screen to rank by"),
			mcp.Enum(market.Screens()...)),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default: 50)")),
		withOutputFormat(),
	), s.handleTechRank)
}

// handleHistData implements get_hist_data.
func (s *Server) handleHistData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	q := histQueryFrom(request, symbol)
	source := request.GetString("source", "")
	indicators := indicatorsFrom(request)
	recentN := request.GetInt("recent_n", 100)

	table, err := s.svc.HistData(ctx, q, source, indicators, recentN)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleRealtimeData implements get_realtime_data.
func (s *Server) handleRealtimeData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol := request.GetString("symbol", "")
	source := request.GetString("source", "")

	table, err := s.svc.RealtimeData(ctx, symbol, source)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleNewsData implements get_news_data.
func (s *Server) handleNewsData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}
	recentN := request.GetInt("recent_n", 10)

	table, err := s.svc.NewsData(ctx, symbol, recentN)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleFundFlow implements get_fund_flow.
func (s *Server) handleFundFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.FundFlow(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleSectorFundFlow implements get_sector_fund_flow.
func (s *Server) handleSectorFundFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := market.BoardKind(request.GetString("sector_type", string(market.BoardIndustry)))
	if kind != market.BoardIndustry && kind != market.BoardConcept {
		return errorResult("INVALID_PARAMS", "sector_type must be industry or concept"), nil
	}

	table, err := s.svc.SectorFundFlow(ctx, kind)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleMarginData implements get_margin_data.
func (s *Server) handleMarginData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.MarginData(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleHSGTFlow implements get_hsgt_flow.
func (s *Server) handleHSGTFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := s.svc.HSGTFlow(ctx)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleBillboard implements get_lhb_detail.
func (s *Server) handleBillboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate := request.GetString("start_date", "")
	endDate := request.GetString("end_date", "")

	table, err := s.svc.Billboard(ctx, startDate, endDate)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleBlockTrades implements get_block_trades.
func (s *Server) handleBlockTrades(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.BlockTrades(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleDividends implements get_dividend_history.
func (s *Server) handleDividends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.Dividends(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleTechRank implements get_tech_rank.
func (s *Server) handleTechRank(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	screen, err := request.RequireString("screen")
	if err != nil {
		return errorResult("INVALID_PARAMS", "screen is required"), nil
	}
	limit := request.GetInt("limit", 50)

	table, err := s.svc.TechRank(ctx, market.Screen(screen), limit)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}
