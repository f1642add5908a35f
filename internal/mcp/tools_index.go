package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hsliu/cnstock/internal/market"
)

func (s *Server) registerIndexTools() {
	// get_index_hist_data
	s.mcp.AddTool(mcp.NewTool("get_index_hist_data",
		mcp.WithDescription("Get historical candlestick data for an index"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Index code (e.g. '000300')")),
		mcp.WithString("interval",
			mcp.Description("Time interval (default: day)"),
			mcp.Enum("minute", "hour", "day", "week", "month")),
		mcp.WithNumber("interval_multiplier",
			mcp.Description("Interval multiplier (default: 1)")),
		mcp.WithString("start_date",
			mcp.Description("Start date in YYYY-MM-DD format")),
		mcp.WithString("end_date",
			mcp.Description("End date in YYYY-MM-DD format")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceEastmoney, market.SourceSina)),
		mcp.WithNumber("recent_n",
			mcp.Description("Number of most recent records to return (default: 100)")),
		withOutputFormat(),
	), s.handleIndexHistData)

	// get_index_realtime_data
	s.mcp.AddTool(mcp.NewTool("get_index_realtime_data",
		mcp.WithDescription("Get the current quote for an index"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Index code (e.g. '000300')")),
		withOutputFormat(),
	), s.handleIndexRealtimeData)

	// get_index_constituents
	s.mcp.AddTool(mcp.NewTool("get_index_constituents",
		mcp.WithDescription("Get the constituent stocks of an index"),
		mcp.WithString("index_code",
			mcp.Required(),
			mcp.Description("Index code (e.g. '000300')")),
		withOutputFormat(),
	), s.handleIndexConstituents)

	// get_industry_board
	s.mcp.AddTool(mcp.NewTool("get_industry_board",
		mcp.WithDescription("Get the industry board ranking"),
		withOutputFormat(),
	), s.handleIndustryBoard)

	// get_concept_board
	s.mcp.AddTool(mcp.NewTool("get_concept_board",
		mcp.WithDescription("Get the concept board ranking"),
		withOutputFormat(),
	), s.handleConceptBoard)

	// get_etf_list
	s.mcp.AddTool(mcp.NewTool("get_etf_list",
		mcp.WithDescription("Get the exchange traded fund listing"),
		withOutputFormat(),
	), s.handleETFList)
}

// handleIndexHistData implements get_index_hist_data.
func (s *Server) handleIndexHistData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	q := histQueryFrom(request, symbol)
	table, err := s.svc.IndexHistData(ctx, q, request.GetString("source", ""), request.GetInt("recent_n", 100))
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleIndexRealtimeData implements get_index_realtime_data.
func (s *Server) handleIndexRealtimeData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.IndexRealtimeData(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleIndexConstituents implements get_index_constituents.
func (s *Server) handleIndexConstituents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	indexCode, err := request.RequireString("index_code")
	if err != nil {
		return errorResult("INVALID_PARAMS", "index_code is required"), nil
	}

	table, err := s.svc.IndexConstituents(ctx, indexCode)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleIndustryBoard implements get_industry_board.
func (s *Server) handleIndustryBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := s.svc.BoardList(ctx, market.BoardIndustry)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleConceptBoard implements get_concept_board.
func (s *Server) handleConceptBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := s.svc.BoardList(ctx, market.BoardConcept)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleETFList implements get_etf_list.
func (s *Server) handleETFList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := s.svc.ETFList(ctx)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}
