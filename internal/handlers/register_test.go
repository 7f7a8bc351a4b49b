package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"devgateway/internal/toolschema"
)

func TestRegisterWiresEveryCanonicalTool(t *testing.T) {
	s := newTestContext(t, false)
	reg := toolschema.NewRegistry()
	s.Register(reg)

	want := []string{
		"smart_read", "smart_search", "smart_exec", "smart_edit",
		"memory_query", "memory_search", "memory_similar", "memory_functions",
		"memory_health", "memory_wireframe", "memory_sessions", "memory_search_all", "memory_roadmap",
		"project_query", "gateway_metrics", "gateway_ask",
	}
	require.Equal(t, len(want), reg.Count())
	for _, name := range want {
		require.True(t, reg.Has(name), "missing tool %s", name)
	}
}

func TestRegisterMemorySearchAllHasNoProjectRequirement(t *testing.T) {
	s := newTestContext(t, false)
	reg := toolschema.NewRegistry()
	s.Register(reg)

	tool := reg.Get("memory_search_all")
	require.NotContains(t, tool.Schema.Required, "project")
	require.Contains(t, tool.Schema.Required, "query")
}
