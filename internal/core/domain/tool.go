package domain

import "encoding/json"

// ToolResult is the result of a tool invocation as returned to the host.
// Failures are reported in-band with IsError set rather than as Go errors.
type ToolResult struct {
	// Content holds one or more text blocks.
	Content []string

	// IsError marks the result as a structured error payload.
	IsError bool
}

// TextResult returns a successful result with a single text block.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []string{text}}
}

// ErrorResult returns a structured error result. The text block is a JSON
// object {"error": msg, "details": details}; details is omitted when nil.
func ErrorResult(msg string, details any) *ToolResult {
	payload := map[string]any{"error": msg}
	if details != nil {
		payload["details"] = details
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"error":"tool result encoding failed"}`)
	}
	return &ToolResult{Content: []string{string(data)}, IsError: true}
}
