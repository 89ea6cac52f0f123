package mcp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/iocache"
	mcp_internal "github.com/huangsam/burstline/internal/mcp"
	"github.com/huangsam/burstline/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `{"svo": ["storm"], "bursts": [[1, 1709380800, 1709402400], [2, 1709532000, 1709539200]], "offsets": [1709254800, 1709373600, 1709424000, 1709640000]}`

func baseConfig() *contract.Config {
	return &contract.Config{
		Unit:         schema.UnitSecond,
		Location:     time.UTC,
		CacheBackend: schema.NoneBackend,
	}
}

func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return mgr
}

func call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseConfig(), noStores())
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"no input", "reduce_timeline", map[string]any{}, "no input document given"},
		{"both inputs", "reduce_timeline", map[string]any{"input_path": "a.json", "document": "{}"}, "not both"},
		{"bad unit", "reduce_timeline", map[string]any{"document": document, "unit": "fortnight"}, "invalid time parameters"},
		{"bad timezone", "burst_range", map[string]any{"document": document, "timezone": "Nowhere/Land"}, "invalid time parameters"},
		{"negative level", "burst_range", map[string]any{"document": document, "lowest_level": -1.0}, "invalid lowest level"},
		{"bad format", "reduce_timeline", map[string]any{"document": document, "input_format": "toml"}, "unsupported input format"},
		{"missing file", "reduce_timeline", map[string]any{"input_path": "/nonexistent/bursts.json"}, "invalid input"},
		{"malformed", "reduce_timeline", map[string]any{"document": "{"}, "reduction failed"},
		{"zero level range", "burst_range", map[string]any{"document": document, "lowest_level": 0.0}, "lowest level must be greater than 0"},
		{"insufficient range", "burst_range", map[string]any{"document": document, "lowest_level": 2.0}, "Try reducing the lowest level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.want)
		})
	}
}

func TestReduceTimelineTool(t *testing.T) {
	res := call(t, "reduce_timeline", map[string]any{"document": document, "subject": "gale"})
	require.False(t, res.IsError, text(res))

	var result schema.TimelineResult
	require.NoError(t, sonic.UnmarshalString(text(res), &result))
	assert.Equal(t, "gale", result.Subject)
	assert.Equal(t, 2, result.MaxLevel)
	assert.Len(t, result.Timeline, 5)
	assert.Equal(t, 0, result.Timeline[0].Level)
}

func TestReduceTimelineTool_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storm.json")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

	res := call(t, "reduce_timeline", map[string]any{"input_path": path, "lowest_level": 1.0})
	require.False(t, res.IsError, text(res))

	var result schema.TimelineResult
	require.NoError(t, sonic.UnmarshalString(text(res), &result))
	assert.Equal(t, "storm", result.Subject)
	require.NotNil(t, result.Range)
	assert.Equal(t, "2024-03-04", result.Range.Start.Format(contract.DateFormat))
	assert.Len(t, result.Timeline, 2)
}

func TestBurstRangeTool(t *testing.T) {
	res := call(t, "burst_range", map[string]any{"document": document, "lowest_level": 1.0})
	require.False(t, res.IsError, text(res))

	var result schema.RangeResult
	require.NoError(t, sonic.UnmarshalString(text(res), &result))
	assert.Equal(t, 1, result.LowestLevel)
	assert.Equal(t, "2024-03-04", result.Start.Format(contract.DateFormat))
	assert.Equal(t, "2024-03-06", result.End.Format(contract.DateFormat))
}
