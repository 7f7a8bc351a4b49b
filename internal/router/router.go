// Package router implements the gateway's routing decision (§4.6 state
// machine, §4.7): given a tool call, the classifier's advisory minimum
// tier, and live availability signals, it decides which tier will serve
// the request via sequential tier-by-tier selection with availability
// checks. The router never performs the request itself — it returns a
// Decision and the caller (internal/handlers) executes it.
package router

import (
	"context"
	"sync"
	"time"

	"devgateway/internal/cache"
	"devgateway/internal/classify"
	"devgateway/internal/tier"
	"golang.org/x/sync/singleflight"
)

// reachabilityMemoTTL caches a model-reachability probe result so the
// router doesn't re-probe on every request (§4.7, §5).
const reachabilityMemoTTL = 60 * time.Second

// ModelProbe reports whether the local-model runner currently answers
// reachability checks.
type ModelProbe interface {
	Reachable(ctx context.Context) bool
}

// Request describes one routing decision's inputs.
type Request struct {
	Tool            string
	Query           string
	IsFileOp        bool // true for read/write file tools (smart_read, smart_edit): eligible for T3
	ProjectHasIndex bool
}

// Decision is the router's output: the chosen tier and why.
type Decision struct {
	Tier      tier.Tier
	Reason    string
	WriteFlag bool
}

// Router holds the shared state needed to make a decision: the cache (for
// T0 lookups), the model probe, and the memoized reachability result.
type Router struct {
	cache *cache.Cache
	model ModelProbe

	mu             sync.Mutex
	reachableAt    time.Time
	reachableValue bool
	probeGroup     singleflight.Group
}

// New returns a Router over the given cache and model probe.
func New(c *cache.Cache, model ModelProbe) *Router {
	return &Router{cache: c, model: model}
}

// Decide runs the §4.6 state machine for one request. cacheType/cacheParams
// identify the cache entry this request would read/write, if any.
func (r *Router) Decide(ctx context.Context, req Request, cacheType string, cacheParams map[string]any) Decision {
	classified := classify.Classify(req.Query, req.Tool)

	if cacheType != "" {
		if _, _, ok := r.cache.Get(cacheType, cacheParams); ok {
			return Decision{Tier: tier.T0, Reason: "cache hit", WriteFlag: classified.WriteFlag}
		}
	}

	if req.ProjectHasIndex && classified.MinTier == tier.T1 {
		return Decision{Tier: tier.T1, Reason: "project index available", WriteFlag: classified.WriteFlag}
	}

	if classified.MinTier == tier.T2 && !classified.WriteFlag && r.modelReachable(ctx) {
		return Decision{Tier: tier.T2, Reason: classified.Reason, WriteFlag: false}
	}

	if req.IsFileOp {
		return Decision{Tier: tier.T3, Reason: "file operation", WriteFlag: classified.WriteFlag}
	}

	return Decision{Tier: classified.MinTier, Reason: "default to tool's own path: " + classified.Reason, WriteFlag: classified.WriteFlag}
}

// modelReachable returns the memoized reachability result, re-probing at
// most once per reachabilityMemoTTL and de-duplicating concurrent probes
// via singleflight so N simultaneous requests trigger one HTTP call.
func (r *Router) modelReachable(ctx context.Context) bool {
	r.mu.Lock()
	if time.Since(r.reachableAt) < reachabilityMemoTTL {
		value := r.reachableValue
		r.mu.Unlock()
		return value
	}
	r.mu.Unlock()

	v, _, _ := r.probeGroup.Do("probe", func() (any, error) {
		ok := r.model.Reachable(ctx)
		r.mu.Lock()
		r.reachableValue = ok
		r.reachableAt = time.Now()
		r.mu.Unlock()
		return ok, nil
	})
	return v.(bool)
}
