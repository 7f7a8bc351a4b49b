package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"devgateway/internal/cache"
	"devgateway/internal/config"
	"devgateway/internal/gwerr"
	"devgateway/internal/httpmodel"
	"devgateway/internal/metrics"
	"devgateway/internal/router"
	"devgateway/internal/security"
)

type fakeModelProbe struct{ reachable bool }

func (f *fakeModelProbe) Reachable(ctx context.Context) bool { return f.reachable }

// newTestContext wires a ServerContext over a throwaway MEMORY_ROOT, with the
// router's model-reachability probe fixed to modelReachable. The local-model
// HTTP client targets a closed port: callers that need a working Chat call
// replace s.Model after construction.
func newTestContext(t *testing.T, modelReachable bool) *ServerContext {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.MemoryRoot = root
	cfg.Execution.HelperDir = filepath.Join(root, "helpers")
	cfg.Execution.WorkingDirectory = root

	c := cache.New(cfg.CachePath())
	m := metrics.New(cfg.MetricsPath())
	sec := security.New(cfg)
	rt := router.New(c, &fakeModelProbe{reachable: modelReachable})
	model := httpmodel.New("http://127.0.0.1:0", "test-model")

	return NewServerContext(cfg, c, m, sec, rt, model)
}

// writeRegistry overwrites the test context's project registry file.
func writeRegistry(t *testing.T, cfg *config.Config, projects ...config.Project) {
	t.Helper()
	rf := struct {
		Projects []config.Project `json:"projects"`
	}{Projects: projects}
	data, err := json.Marshal(rf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.RegistryPath(), data, 0o644))
}

// writeHelper installs an executable stub script under the test context's
// helper directory, standing in for the external index/memory helpers
// (§6.3, out of scope per §1).
func writeHelper(t *testing.T, cfg *config.Config, name, script string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.Execution.HelperDir, 0o755))
	require.NoError(t, os.WriteFile(cfg.HelperPath(name), []byte(script), 0o755))
}

func requireKind(t *testing.T, err error, want gwerr.Kind) {
	t.Helper()
	require.Error(t, err)
	kind, ok := gwerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, want, kind)
}
