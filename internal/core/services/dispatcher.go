package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driving.ToolService = (*Dispatcher)(nil)

// Error messages returned in structured error results.
const (
	msgInvalidArguments = "Invalid arguments"
	msgExecutionFailed  = "Tool execution failed"
)

type dispatchEntry struct {
	def    driving.ToolDefinition
	schema *jsonschema.Resolved
}

// Dispatcher routes tool calls by exact name. Every failure is converted
// into a structured error result.
type Dispatcher struct {
	defs    []driving.ToolDefinition
	entries map[string]dispatchEntry
}

// NewDispatcher resolves each definition's input schema. An unresolvable
// schema is a configuration error. When two definitions share a name the
// first one wins.
func NewDispatcher(defs []driving.ToolDefinition) (*Dispatcher, error) {
	d := &Dispatcher{entries: make(map[string]dispatchEntry, len(defs))}

	for _, def := range defs {
		if _, ok := d.entries[def.Name]; ok {
			logger.Warn("Duplicate tool name %s, keeping the first definition", def.Name)
			continue
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("%w: tool %s has no handler", domain.ErrInvalidInput, def.Name)
		}

		entry := dispatchEntry{def: def}
		if def.InputSchema != nil {
			resolved, err := def.InputSchema.Resolve(nil)
			if err != nil {
				return nil, fmt.Errorf("%w: input schema of %s: %w", domain.ErrInvalidInput, def.Name, err)
			}
			entry.schema = resolved
		}
		d.entries[def.Name] = entry
		d.defs = append(d.defs, def)
	}
	return d, nil
}

// Definitions returns the dispatchable tool surfaces.
func (d *Dispatcher) Definitions() []driving.ToolDefinition {
	defs := make([]driving.ToolDefinition, len(d.defs))
	copy(defs, d.defs)
	return defs
}

// Call validates args against the tool's schema and invokes its handler.
func (d *Dispatcher) Call(ctx context.Context, name string, args json.RawMessage) (result *domain.ToolResult) {
	entry, ok := d.entries[name]
	if !ok {
		return domain.ErrorResult(fmt.Sprintf("Unknown tool: %s", name), nil)
	}

	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = json.RawMessage("{}")
	}

	if entry.schema != nil {
		var instance map[string]any
		if err := json.Unmarshal(args, &instance); err != nil {
			return domain.ErrorResult(msgInvalidArguments, err.Error())
		}
		if err := entry.schema.Validate(instance); err != nil {
			return domain.ErrorResult(msgInvalidArguments, err.Error())
		}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool %s panicked: %v", name, r)
			result = domain.ErrorResult(msgExecutionFailed, fmt.Sprint(r))
		}
	}()

	res, err := entry.def.Handler(ctx, args)
	if err != nil {
		logger.Warn("Tool %s failed: %v", name, err)
		return domain.ErrorResult(msgExecutionFailed, err.Error())
	}
	if res == nil {
		return domain.TextResult("")
	}
	return res
}
