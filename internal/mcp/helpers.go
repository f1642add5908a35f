package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hsliu/cnstock/internal/errors"
	"github.com/hsliu/cnstock/internal/format"
	"github.com/hsliu/cnstock/internal/market"
)

// tableResult encodes a table in the requested output format and wraps
// it in a text result.
func tableResult(table *market.Table, formatName string) *mcp.CallToolResult {
	f, err := format.Parse(formatName)
	if err != nil {
		return mcpErrorResult(err)
	}
	encoded, err := format.Encode(table, f)
	if err != nil {
		return mcpErrorResult(err)
	}
	return mcp.NewToolResultText(encoded)
}

// mcpErrorResult converts an error into an MCP error result, mapping
// coded errors to their code.
func mcpErrorResult(err error) *mcp.CallToolResult {
	code := errors.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	return errorResult(code, err.Error())
}

// errorResult creates an MCP error result.
func errorResult(code, message string) *mcp.CallToolResult {
	errorData := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}

	jsonBytes, err := json.Marshal(errorData)
	if err != nil {
		// Fallback to simple text
		return mcp.NewToolResultText(fmt.Sprintf("Error: %s - %s", code, message))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}

// jsonResult creates an MCP success result from a JSON-serializable object.
func jsonResult(data interface{}) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return errorResult("INTERNAL_ERROR", fmt.Sprintf("failed to marshal response: %s", err))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}

// indicatorsFrom reads the indicator list, which clients send either as
// an array of names or as a single comma-separated string. Elements are
// split on commas too, so both shapes normalize to one name per entry.
func indicatorsFrom(request mcp.CallToolRequest) []string {
	parts := request.GetStringSlice("indicators_list", nil)
	if len(parts) == 0 {
		if joined := request.GetString("indicators_list", ""); joined != "" {
			parts = []string{joined}
		}
	}

	var names []string
	for _, part := range parts {
		for _, name := range strings.Split(part, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// histQueryFrom pulls the shared candlestick history parameters out of
// a request.
func histQueryFrom(request mcp.CallToolRequest, symbol string) market.HistQuery {
	return market.HistQuery{
		Symbol:     symbol,
		Interval:   request.GetString("interval", "day"),
		Multiplier: request.GetInt("interval_multiplier", 1),
		StartDate:  request.GetString("start_date", ""),
		EndDate:    request.GetString("end_date", ""),
		Adjust:     request.GetString("adjust", "none"),
	}
}
