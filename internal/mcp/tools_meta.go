package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/market"
)

func (s *Server) registerMetaTools() {
	// get_macro_data
	s.mcp.AddTool(mcp.NewTool("get_macro_data",
		mcp.WithDescription("Get a macro economic series, or all of them merged when indicator is 'all'"),
		mcp.WithString("indicator",
			mcp.Description("Macro series to fetch (default: all)"),
			mcp.Enum(
				string(market.MacroMoneySupply), string(market.MacroGDP),
				string(market.MacroCPI), string(market.MacroPMI),
				string(market.MacroStockSummary), string(market.MacroAll))),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceSina, market.SourceEastmoney)),
		withOutputFormat(),
	), s.handleMacroData)

	// get_trade_calendar
	s.mcp.AddTool(mcp.NewTool("get_trade_calendar",
		mcp.WithDescription("Get the exchange trading day calendar"),
		mcp.WithString("year",
			mcp.Description("Restrict to one year (e.g. '2025')")),
		withOutputFormat(),
	), s.handleTradeCalendar)

	// get_time_info
	s.mcp.AddTool(mcp.NewTool("get_time_info",
		mcp.WithDescription("Get the current time (ISO format, timestamp) and the most recent trading day"),
	), s.handleTimeInfo)

	// get_version
	s.mcp.AddTool(mcp.NewTool("get_version",
		mcp.WithDescription("Get the server name, version and build commit"),
	), s.handleVersion)
}

// handleMacroData implements get_macro_data.
func (s *Server) handleMacroData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	indicator := market.MacroIndicator(request.GetString("indicator", string(market.MacroAll)))
	source := request.GetString("source", "")

	table, err := s.svc.MacroData(ctx, indicator, source)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleTradeCalendar implements get_trade_calendar.
func (s *Server) handleTradeCalendar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := s.svc.TradeCalendar(ctx, request.GetString("year", ""))
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleTimeInfo implements get_time_info.
func (s *Server) handleTimeInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.svc.TimeInfo(ctx)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return jsonResult(info), nil
}

// handleVersion implements get_version.
func (s *Server) handleVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"name":    serverName,
		"version": common.GetVersion(),
		"commit":  common.GetGitCommit(),
	}
	return jsonResult(response), nil
}
