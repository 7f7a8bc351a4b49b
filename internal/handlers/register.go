package handlers

import "devgateway/internal/toolschema"

var memoryHandlerNames = []string{
	"query", "search", "similar", "functions", "health", "wireframe", "sessions", "search_all", "roadmap",
}

// Register builds every gateway tool and adds it to reg (§4.6, §6.1). It
// panics on a duplicate or malformed tool definition — a programmer error,
// not a request-time condition — matching toolschema.Registry.MustRegister.
func (s *ServerContext) Register(reg *toolschema.Registry) {
	reg.MustRegister(&toolschema.Tool{
		Name:        "smart_read",
		Description: "Read a file, preferring a pre-built project index over the raw filesystem.",
		Execute:     s.SmartRead,
		Schema: toolschema.ToolSchema{
			Required: []string{"path"},
			Properties: map[string]toolschema.Property{
				"path":    {Type: "string", Description: "Absolute or relative file path."},
				"detail":  {Type: "string", Description: "summary, functions, or full.", Enum: []any{"summary", "functions", "full"}, Default: "full"},
				"project": {Type: "string", Description: "Project id; auto-detected from the client working directory if omitted."},
			},
		},
	})

	reg.MustRegister(&toolschema.Tool{
		Name:        "smart_search",
		Description: "Search a project's code via the hybrid-search helper, caching results.",
		Execute:     s.SmartSearch,
		Schema: toolschema.ToolSchema{
			Required: []string{"query"},
			Properties: map[string]toolschema.Property{
				"query":   {Type: "string", Description: "Search query."},
				"project": {Type: "string", Description: "Project id; auto-detected if omitted."},
				"limit":   {Type: "integer", Description: "Maximum results.", Default: defaultSearchLimit},
			},
		},
	})

	reg.MustRegister(&toolschema.Tool{
		Name:        "smart_exec",
		Description: "Run a shell command, caching successful results by command shape.",
		Execute:     s.SmartExec,
		Schema: toolschema.ToolSchema{
			Required: []string{"command"},
			Properties: map[string]toolschema.Property{
				"command":   {Type: "string", Description: "Shell command to execute."},
				"cwd":       {Type: "string", Description: "Working directory for the command."},
				"skipCache": {Type: "boolean", Description: "Bypass the command cache.", Default: false},
			},
		},
	})

	reg.MustRegister(&toolschema.Tool{
		Name:        "smart_edit",
		Description: "Write a file, invalidating affected cache entries and triggering a reindex.",
		Execute:     s.SmartEdit,
		Schema: toolschema.ToolSchema{
			Required: []string{"path", "content"},
			Properties: map[string]toolschema.Property{
				"path":    {Type: "string", Description: "Absolute or relative file path."},
				"content": {Type: "string", Description: "New file content."},
				"project": {Type: "string", Description: "Project id; if omitted, auto-detected from the client working directory, else from the path."},
			},
		},
	})

	for _, name := range memoryHandlerNames {
		name := name
		spec := memorySpecs[name]
		properties := map[string]toolschema.Property{}
		required := []string{}
		if !spec.crossProject {
			properties["project"] = toolschema.Property{Type: "string", Description: "Project id."}
			required = append(required, "project")
		}
		if spec.requireQuery {
			properties["query"] = toolschema.Property{Type: "string", Description: "Query text."}
			required = append(required, "query")
		}
		reg.MustRegister(&toolschema.Tool{
			Name:        "memory_" + name,
			Description: "Invoke the memory_" + name + " helper against the project's memory store.",
			Execute:     s.MemoryHandler(name),
			Schema:      toolschema.ToolSchema{Required: required, Properties: properties},
		})
	}

	reg.MustRegister(&toolschema.Tool{
		Name:        "project_query",
		Description: "Query another project's memory store, tagging cross-project responses.",
		Execute:     s.ProjectQuery,
		Schema: toolschema.ToolSchema{
			Required: []string{"project", "query"},
			Properties: map[string]toolschema.Property{
				"project": {Type: "string", Description: "Target project id."},
				"query":   {Type: "string", Description: "Query text."},
				"type":    {Type: "string", Description: "memory, functions, similar, decisions, or patterns.", Enum: []any{"memory", "functions", "similar", "decisions", "patterns"}, Default: "memory"},
			},
		},
	})

	reg.MustRegister(&toolschema.Tool{
		Name:        "gateway_metrics",
		Description: "Read-only summary of routing metrics and cache stats.",
		Execute:     s.GatewayMetrics,
		Schema: toolschema.ToolSchema{
			Properties: map[string]toolschema.Property{
				"format": {Type: "string", Description: "summary, detailed, or recent.", Enum: []any{"summary", "detailed", "recent"}, Default: "summary"},
			},
		},
	})

	reg.MustRegister(&toolschema.Tool{
		Name:        "gateway_ask",
		Description: "Ask the local model a reasoning question directly, without an index lookup.",
		Execute:     s.GatewayAsk,
		Schema: toolschema.ToolSchema{
			Required: []string{"query"},
			Properties: map[string]toolschema.Property{
				"query":  {Type: "string", Description: "Question for the local model."},
				"system": {Type: "string", Description: "Optional system prompt."},
			},
		},
	})
}
