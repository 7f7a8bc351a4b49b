package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"devgateway/internal/cache"
	"devgateway/internal/tier"
)

type fakeModel struct{ reachable bool }

func (f *fakeModel) Reachable(ctx context.Context) bool { return f.reachable }

func TestDecideReturnsT0OnCacheHit(t *testing.T) {
	c := cache.New(t.TempDir())
	require.NoError(t, c.Set("fileRead", map[string]any{"path": "/a.go"}, "content", time.Minute))

	r := New(c, &fakeModel{reachable: false})
	d := r.Decide(context.Background(), Request{Tool: "smart_read", Query: "where is a.go"}, "fileRead", map[string]any{"path": "/a.go"})
	require.Equal(t, tier.T0, d.Tier)
}

func TestDecideUsesT1WhenIndexAvailable(t *testing.T) {
	c := cache.New(t.TempDir())
	r := New(c, &fakeModel{reachable: false})

	d := r.Decide(context.Background(), Request{
		Tool:            "smart_search",
		Query:           "where is handleLogin defined?",
		ProjectHasIndex: true,
	}, "", nil)
	require.Equal(t, tier.T1, d.Tier)
}

func TestDecideUsesT2WhenModelReachableAndReadOnly(t *testing.T) {
	c := cache.New(t.TempDir())
	r := New(c, &fakeModel{reachable: true})

	d := r.Decide(context.Background(), Request{
		Tool:  "smart_read",
		Query: "what does the router do on a cache miss?",
	}, "", nil)
	require.Equal(t, tier.T2, d.Tier)
}

func TestDecideFallsBackToT3ForFileOpsWhenModelUnreachable(t *testing.T) {
	c := cache.New(t.TempDir())
	r := New(c, &fakeModel{reachable: false})

	d := r.Decide(context.Background(), Request{
		Tool:     "smart_read",
		Query:    "what does the router do on a cache miss?",
		IsFileOp: true,
	}, "", nil)
	require.Equal(t, tier.T3, d.Tier)
}

func TestDecideWriteIntentNeverServedFromT2(t *testing.T) {
	c := cache.New(t.TempDir())
	r := New(c, &fakeModel{reachable: true})

	d := r.Decide(context.Background(), Request{
		Tool:  "smart_edit",
		Query: "change handleLogin to accept an email",
	}, "", nil)
	require.NotEqual(t, tier.T2, d.Tier)
	require.True(t, d.WriteFlag)
}

func TestModelReachableMemoizesWithinTTL(t *testing.T) {
	c := cache.New(t.TempDir())
	probe := &countingProbe{reachable: true}
	r := New(c, probe)

	r.modelReachable(context.Background())
	r.modelReachable(context.Background())
	require.Equal(t, 1, probe.calls)
}

type countingProbe struct {
	reachable bool
	calls     int
}

func (p *countingProbe) Reachable(ctx context.Context) bool {
	p.calls++
	return p.reachable
}
