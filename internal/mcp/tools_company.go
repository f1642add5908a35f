package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hsliu/cnstock/internal/market"
)

func (s *Server) registerCompanyTools() {
	// get_balance_sheet
	s.mcp.AddTool(mcp.NewTool("get_balance_sheet",
		mcp.WithDescription("Get the balance sheet history for a company"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceSina, market.SourceEastmoney)),
		mcp.WithNumber("recent_n",
			mcp.Description("Number of most recent reports to return (default: 10)")),
		withOutputFormat(),
	), s.handleBalanceSheet)

	// get_income_statement
	s.mcp.AddTool(mcp.NewTool("get_income_statement",
		mcp.WithDescription("Get the income statement history for a company"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceSina, market.SourceEastmoney)),
		mcp.WithNumber("recent_n",
			mcp.Description("Number of most recent reports to return (default: 10)")),
		withOutputFormat(),
	), s.handleIncomeStatement)

	// get_cash_flow
	s.mcp.AddTool(mcp.NewTool("get_cash_flow",
		mcp.WithDescription("Get the cash flow statement history for a company"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceSina, market.SourceEastmoney)),
		mcp.WithNumber("recent_n",
			mcp.Description("Number of most recent reports to return (default: 10)")),
		withOutputFormat(),
	), s.handleCashFlow)

	// get_financial_metrics
	s.mcp.AddTool(mcp.NewTool("get_financial_metrics",
		mcp.WithDescription("Get the key financial metric summary across the three statements"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleFinancialMetrics)

	// get_inner_trade_data
	s.mcp.AddTool(mcp.NewTool("get_inner_trade_data",
		mcp.WithDescription("Get insider shareholding changes for a company"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleInnerTrades)

	// get_shareholder_info
	s.mcp.AddTool(mcp.NewTool("get_shareholder_info",
		mcp.WithDescription("Get the shareholder count history for a company"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleShareholderInfo)

	// get_product_info
	s.mcp.AddTool(mcp.NewTool("get_product_info",
		mcp.WithDescription("Get the main business composition for a company"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleProductInfo)

	// get_stock_basic_info
	s.mcp.AddTool(mcp.NewTool("get_stock_basic_info",
		mcp.WithDescription("Get the basic company profile for a stock"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		mcp.WithString("source",
			mcp.Description("Preferred data source"),
			mcp.Enum(market.SourceEastmoney, market.SourceXueqiu)),
		withOutputFormat(),
	), s.handleStockBasicInfo)

	// get_investor_sentiment
	s.mcp.AddTool(mcp.NewTool("get_investor_sentiment",
		mcp.WithDescription("Get retail and institutional sentiment series for a stock, merged with an indicator column"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock symbol/ticker (e.g. '000001')")),
		withOutputFormat(),
	), s.handleInvestorSentiment)
}

// handleBalanceSheet implements get_balance_sheet.
func (s *Server) handleBalanceSheet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.BalanceSheet(ctx, symbol, request.GetString("source", ""), request.GetInt("recent_n", 10))
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleIncomeStatement implements get_income_statement.
func (s *Server) handleIncomeStatement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.IncomeStatement(ctx, symbol, request.GetString("source", ""), request.GetInt("recent_n", 10))
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleCashFlow implements get_cash_flow.
func (s *Server) handleCashFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.CashFlow(ctx, symbol, request.GetString("source", ""), request.GetInt("recent_n", 10))
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleFinancialMetrics implements get_financial_metrics.
func (s *Server) handleFinancialMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.FinancialMetrics(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleInnerTrades implements get_inner_trade_data.
func (s *Server) handleInnerTrades(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.InnerTrades(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleShareholderInfo implements get_shareholder_info.
func (s *Server) handleShareholderInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.ShareholderInfo(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleProductInfo implements get_product_info.
func (s *Server) handleProductInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.ProductInfo(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleStockBasicInfo implements get_stock_basic_info.
func (s *Server) handleStockBasicInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.StockBasicInfo(ctx, symbol, request.GetString("source", ""))
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}

// handleInvestorSentiment implements get_investor_sentiment.
func (s *Server) handleInvestorSentiment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult("INVALID_PARAMS", "symbol is required"), nil
	}

	table, err := s.svc.InvestorSentiment(ctx, symbol)
	if err != nil {
		return mcpErrorResult(err), nil
	}
	return tableResult(table, request.GetString("output_format", "")), nil
}
