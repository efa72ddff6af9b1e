package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcpland/internal/core/domain"
)

func TestBasePlugin_RegisterTool_Normalises(t *testing.T) {
	plugin := NewBasePlugin(PluginSpec{Name: "angular", Description: "Angular MCP"}, domain.Config{})
	tool := newMockTool("docs", "Angular docs context search tool.")

	require.NoError(t, plugin.RegisterTool(tool, "docs"))

	spec := tool.Spec()
	assert.Equal(t, "angular-docs", spec.Name)
	assert.Equal(t, "angular", spec.PluginID)
	assert.Equal(t, "docs", spec.ToolID)
	assert.Equal(t, "angular-docs-context", spec.SourceID)
	assert.Len(t, plugin.Tools(), 1)
}

func TestBasePlugin_RegisterTool_KeepsExistingPrefixAndSource(t *testing.T) {
	plugin := NewBasePlugin(PluginSpec{Name: "angular"}, domain.Config{})
	tool := newMockTool("angular-docs", "desc")
	tool.spec.SourceID = "angular-llm-context"

	require.NoError(t, plugin.RegisterTool(tool, "docs"))

	assert.Equal(t, "angular-docs", tool.Spec().Name)
	assert.Equal(t, "angular-llm-context", tool.Spec().SourceID)
}

func TestBasePlugin_RegisterTool_ToolIDFallsBackToName(t *testing.T) {
	plugin := NewBasePlugin(PluginSpec{Name: "p"}, domain.Config{})
	tool := newMockTool("search", "desc")

	require.NoError(t, plugin.RegisterTool(tool, ""))

	assert.Equal(t, "search", tool.Spec().ToolID)
	assert.Equal(t, "p-search-context", tool.Spec().SourceID)
}

func TestBasePlugin_RegisterTool_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		tool    Tool
		wantErr error
	}{
		{"nil tool", nil, domain.ErrInvalidIdentity},
		{"blank name", newMockTool("  ", "desc"), domain.ErrInvalidIdentity},
		{"blank description", newMockTool("docs", " "), domain.ErrInvalidIdentity},
		{"other plugin", &mockTool{spec: ToolSpec{Name: "docs", Description: "d", PluginID: "react"}}, domain.ErrPluginMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := NewBasePlugin(PluginSpec{Name: "angular"}, domain.Config{})
			err := plugin.RegisterTool(tt.tool, "docs")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, plugin.Tools())
		})
	}
}

func TestBasePlugin_RegisterTool_DuplicateName(t *testing.T) {
	plugin := NewBasePlugin(PluginSpec{Name: "p"}, domain.Config{})

	require.NoError(t, plugin.RegisterTool(newMockTool("docs", "d"), "docs"))
	err := plugin.RegisterTool(newMockTool("p-docs", "d"), "other")

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestBasePlugin_RegisterTool_DisabledIsSkipped(t *testing.T) {
	cfg := domain.Config{Registry: map[string]domain.PluginConfig{
		"angular": {Tools: map[string]domain.ToolConfig{"docs": {Enabled: boolPtr(false)}}},
	}}
	plugin := NewBasePlugin(PluginSpec{Name: "angular"}, cfg)

	err := plugin.RegisterTool(newMockTool("docs", "desc"), "docs")

	require.NoError(t, err)
	assert.Empty(t, plugin.Tools())
}

func TestBasePlugin_Init(t *testing.T) {
	plugin := NewBasePlugin(PluginSpec{Name: "p"}, domain.Config{})
	ok := newMockTool("ok", "d")
	failing := newMockTool("failing", "d")
	failing.initErr = errors.New("fetch failed")
	require.NoError(t, plugin.RegisterTool(ok, ""))
	require.NoError(t, plugin.RegisterTool(failing, ""))

	err := plugin.Init(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "p-failing")
	assert.Contains(t, err.Error(), "fetch failed")
	assert.Equal(t, int32(1), ok.initCalls.Load())
	assert.Equal(t, int32(1), failing.initCalls.Load())
}

func TestBasePlugin_Definitions(t *testing.T) {
	plugin := NewBasePlugin(PluginSpec{Name: "p", Description: "Plugin p"}, domain.Config{})
	tool := newMockTool("echo", "Echo tool")
	tool.handle = func(_ context.Context, args json.RawMessage) (*domain.ToolResult, error) {
		return domain.TextResult("got " + string(args)), nil
	}
	require.NoError(t, plugin.RegisterTool(tool, "echo"))

	defs := plugin.Definitions()

	require.Len(t, defs, 1)
	assert.Equal(t, "p-echo", defs[0].Name)
	assert.Equal(t, "Echo tool", defs[0].Description)

	res, err := defs[0].Handler(context.Background(), json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, []string{`got {"a":1}`}, res.Content)
	assert.Equal(t, "p", plugin.Name())
	assert.Equal(t, "Plugin p", plugin.Description())
}

func TestBasePlugin_RegisterTool_RejectedSpecUnchanged(t *testing.T) {
	t.Run("other plugin", func(t *testing.T) {
		plugin := NewBasePlugin(PluginSpec{Name: "angular"}, domain.Config{})
		tool := &mockTool{spec: ToolSpec{Name: "docs", Description: "d", PluginID: "react"}}
		before := tool.spec

		err := plugin.RegisterTool(tool, "docs")

		assert.ErrorIs(t, err, domain.ErrPluginMismatch)
		assert.Equal(t, before, tool.spec)
	})

	t.Run("duplicate name", func(t *testing.T) {
		plugin := NewBasePlugin(PluginSpec{Name: "p"}, domain.Config{})
		require.NoError(t, plugin.RegisterTool(newMockTool("docs", "d"), "docs"))
		tool := newMockTool("docs", "d")
		before := tool.spec

		err := plugin.RegisterTool(tool, "other")

		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		assert.Equal(t, before, tool.spec)
	})

	t.Run("disabled by config", func(t *testing.T) {
		cfg := domain.Config{Registry: map[string]domain.PluginConfig{
			"p": {Tools: map[string]domain.ToolConfig{"docs": {Enabled: boolPtr(false)}}},
		}}
		plugin := NewBasePlugin(PluginSpec{Name: "p"}, cfg)
		tool := newMockTool("docs", "d")
		before := tool.spec

		require.NoError(t, plugin.RegisterTool(tool, "docs"))

		assert.Equal(t, before, tool.spec)
		assert.Empty(t, plugin.Tools())
	})
}
