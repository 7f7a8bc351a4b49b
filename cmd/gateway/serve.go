package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"devgateway/internal/cache"
	"devgateway/internal/config"
	"devgateway/internal/handlers"
	"devgateway/internal/httpmodel"
	"devgateway/internal/logging"
	"devgateway/internal/metrics"
	"devgateway/internal/projectindex"
	"devgateway/internal/router"
	"devgateway/internal/rpc"
	"devgateway/internal/security"
	"devgateway/internal/toolschema"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the gateway as a stdio JSON-RPC server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logging.Initialize(cfg.MemoryRoot, cfg.Logging.DebugMode, cfg.Logging.Level, cfg.Logging.Categories); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
	}

	c := cache.New(cfg.CachePath())
	m := metrics.New(cfg.MetricsPath())
	sec := security.New(cfg)
	model := httpmodel.New(cfg.Ollama.URL, cfg.Ollama.ChatModel)
	rt := router.New(c, model)

	ctx := handlers.NewServerContext(cfg, c, m, sec, rt, model)

	registry := toolschema.NewRegistry()
	ctx.Register(registry)

	server := rpc.New(toolDescriptors(registry), toolHandler(registry), os.Stdout, func() {
		if err := m.Flush(); err != nil {
			logging.MetricsWarn("shutdown metrics flush failed: %v", err)
		}
	})
	server.OnInitialize(ctx.SetWorkingDir)

	watchers := startProjectWatchers(cfg, c)
	defer func() {
		for _, w := range watchers {
			w.Close()
		}
	}()

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	router.StartCleanupSweep(gctx, g, c)
	g.Go(func() error {
		defer cancel()
		return server.Serve(gctx, os.Stdin)
	})

	logging.Boot("gateway serving on stdio, memory_root=%s", cfg.MemoryRoot)
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// startProjectWatchers starts one projectindex.Watcher per registered
// project, so a re-index performed by the external watcher (§6.3, out of
// scope per §1) invalidates the gateway's own cache entries as soon as it
// happens rather than waiting on the reader's own staleness tolerance
// (§5). Registry or per-project watcher setup failures are logged and
// skipped rather than aborting startup — a missing project memory
// directory just means that project hasn't been indexed yet.
func startProjectWatchers(cfg *config.Config, c *cache.Cache) []*projectindex.Watcher {
	reg, err := config.LoadRegistry(cfg.RegistryPath())
	if err != nil {
		logging.Boot("project registry unavailable, skipping index watchers: %v", err)
		return nil
	}

	watchers := make([]*projectindex.Watcher, 0, len(reg.Projects))
	for _, p := range reg.Projects {
		dir := p.MemoryPath
		if dir == "" {
			dir = cfg.ProjectMemoryPath(p.ID)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Boot("project %s: cannot prepare memory dir %s for watching: %v", p.ID, dir, err)
			continue
		}
		w, err := projectindex.NewWatcher(dir, p.ID, c)
		if err != nil {
			logging.Boot("project %s: failed to start index watcher on %s: %v", p.ID, dir, err)
			continue
		}
		watchers = append(watchers, w)
	}
	return watchers
}

// toolDescriptors renders the registry's tools into the RPC layer's
// tools/list catalog shape.
func toolDescriptors(reg *toolschema.Registry) []rpc.ToolDescriptor {
	names := reg.Names()
	out := make([]rpc.ToolDescriptor, 0, len(names))
	for _, name := range names {
		tool := reg.Get(name)
		out = append(out, rpc.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchema(tool.Schema),
		})
	}
	return out
}

// inputSchema renders a toolschema.ToolSchema as a bare JSON Schema object
// (tools/list's inputSchema field), round-tripping through encoding/json so
// the Property zero values (omitempty default/enum/items) collapse the way
// a hand-written schema document would.
func inputSchema(schema toolschema.ToolSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var rendered map[string]any
	if err := json.Unmarshal(data, &rendered); err != nil {
		return map[string]any{"type": "object"}
	}
	rendered["type"] = "object"
	return rendered
}

// toolHandler adapts the registry's Execute to rpc.Handler's signature.
func toolHandler(reg *toolschema.Registry) rpc.Handler {
	return func(ctx context.Context, name string, args map[string]any) (any, error) {
		result, err := reg.Execute(ctx, name, args)
		if err != nil {
			return nil, err
		}
		return result.Result, nil
	}
}
