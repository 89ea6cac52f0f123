// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// NewMCPServer initializes and configures the burstline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Burstline Timeline Server",
		Version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: reduce_timeline ---
	s.AddTool(mcp.NewTool("reduce_timeline",
		mcp.WithDescription("Reduce detected bursts and event offsets into a per-day timeline of the highest active burst level."),
		mcp.WithString("input_path", mcp.Description("Path to a JSON, YAML or CSV burst document.")),
		mcp.WithString("document", mcp.Description("The burst document itself, used when input_path is not given.")),
		mcp.WithString("input_format", mcp.Description("Format of the document. Detected from input_path, defaults to json for inline documents."), mcp.Enum("json", "yaml", "csv")),
		mcp.WithString("unit", mcp.Description("Unit of epoch numbers in the document (D, h, m, s, ms, us, ns). Defaults to 's'.")),
		mcp.WithString("timezone", mcp.Description("IANA timezone that defines calendar days. Defaults to UTC.")),
		mcp.WithNumber("lowest_level", mcp.Description("Only show the window spanned by bursts at or above this level.")),
		mcp.WithString("subject", mcp.Description("Label for the timeline. Defaults to the document's svo tuple.")),
	), h.handleReduceTimeline)

	// --- 2. Tool: burst_range ---
	s.AddTool(mcp.NewTool("burst_range",
		mcp.WithDescription("Derive the display window spanned by bursts at or above a level."),
		mcp.WithString("input_path", mcp.Description("Path to a JSON, YAML or CSV burst document.")),
		mcp.WithString("document", mcp.Description("The burst document itself, used when input_path is not given.")),
		mcp.WithString("input_format", mcp.Description("Format of the document."), mcp.Enum("json", "yaml", "csv")),
		mcp.WithString("unit", mcp.Description("Unit of epoch numbers in the document.")),
		mcp.WithString("timezone", mcp.Description("IANA timezone that defines calendar days.")),
		mcp.WithNumber("lowest_level", mcp.Description("Lowest burst level that counts towards the window."), mcp.Required()),
	), h.handleBurstRange)

	return s
}

// StartMCPServer starts the burstline MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
