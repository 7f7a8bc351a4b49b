// Package toolschema defines the Tool/Registry shape shared by the
// gateway's handlers (smart_read, smart_search, smart_exec, smart_edit,
// memory_*, project_query, gateway_metrics, gateway_ask — §6): a fixed
// tool list, with no intent-routing layer (category, priority, or
// context filtering) since the tool set never varies at runtime.
package toolschema

import "context"

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Items       *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for a tool's arguments.
type ToolSchema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution: raw args in, a JSON-
// serializable result and an error out. The RPC layer classifies the
// error's kind via gwerr.KindOf when rendering the response (§7).
type ExecuteFunc func(ctx context.Context, args map[string]any) (any, error)

// Tool defines one of the gateway's fixed RPC-exposed tools.
type Tool struct {
	Name        string
	Description string
	Execute     ExecuteFunc
	Schema      ToolSchema
}

// Validate checks that the tool definition is complete.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps the outcome of a tool execution with timing metadata.
// gateway_metrics does not read it; its aggregates come from the metrics
// recorder the handlers feed.
type ToolResult struct {
	ToolName   string
	Result     any
	Error      error
	DurationMs int64
}

// IsSuccess reports whether the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
