package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/huangsam/burstline/core"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleReduceTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, in, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}
	if s := strings.TrimSpace(request.GetString("subject", "")); s != "" {
		cfg.Subject = s
	}

	result, _, err := core.ReduceInput(core.WithSuppressHeader(ctx), cfg, h.mgr, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reduction failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleBurstRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, in, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := core.RangeForInput(core.WithSuppressHeader(ctx), cfg, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("range failed: %v", err)), nil
	}
	return jsonResult(result)
}

// prepare clones the base config, applies the shared arguments and resolves
// the document. A non-nil result is the error to hand back to the client.
func (h *toolHandler) prepare(request mcp.CallToolRequest) (*contract.Config, core.Input, *mcp.CallToolResult) {
	cfg := h.baseCfg.Clone()

	if err := contract.RevalidateTime(cfg, request.GetString("unit", ""), request.GetString("timezone", "")); err != nil {
		return nil, core.Input{}, mcp.NewToolResultError(fmt.Sprintf("invalid time parameters: %v", err))
	}
	if err := contract.RevalidateThreshold(cfg, request.GetInt("lowest_level", cfg.LowestLevel)); err != nil {
		return nil, core.Input{}, mcp.NewToolResultError(fmt.Sprintf("invalid lowest level: %v", err))
	}

	format := schema.InputFormat(strings.ToLower(request.GetString("input_format", "")))
	path := request.GetString("input_path", "")
	document := request.GetString("document", "")

	var in core.Input
	var err error
	switch {
	case path != "" && document != "":
		err = fmt.Errorf("pass either input_path or document, not both")
	case path != "":
		err = contract.RevalidateInput(cfg, path, format)
		if err == nil {
			in, err = core.FileInput(cfg)
		}
	default:
		in, err = core.InlineInput(document, format)
	}
	if err != nil {
		return nil, core.Input{}, mcp.NewToolResultError(fmt.Sprintf("invalid input: %v", err))
	}
	return cfg, in, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
