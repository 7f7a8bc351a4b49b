package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devgateway/internal/gwerr"
)

var validMetricsFormats = map[string]bool{"summary": true, "detailed": true, "recent": true}

// GatewayMetrics implements gateway_metrics(format) (§4.6): a read-only
// human-readable rendering of the Metrics Recorder and Cache stats. Never
// touches the cache or metrics write paths.
func (s *ServerContext) GatewayMetrics(_ context.Context, args map[string]any) (any, error) {
	format := optionalString(args, "format")
	if format == "" {
		format = "summary"
	}
	if !validMetricsFormats[format] {
		return nil, gwerr.New(gwerr.InvalidInput, "format must be one of summary, detailed, recent")
	}

	snap := s.Metrics.Snapshot()
	stats := s.Cache.GetStats()

	var b strings.Builder
	fmt.Fprintf(&b, "Total queries: %d\n", snap.TotalQueries)
	fmt.Fprintf(&b, "Estimated $ saved: %.4f\n", snap.EstimatedDollarsSaved)
	fmt.Fprintf(&b, "Cache hit rate: %.2f%% (mem=%d, disk=%d)\n", stats.HitRate()*100, stats.MemorySize, stats.DiskSize)

	if format == "summary" {
		return b.String(), nil
	}

	if format == "detailed" {
		fmt.Fprintln(&b, "Per-route:")
		for route, count := range snap.PerRoute {
			fmt.Fprintf(&b, "  %s: %d\n", route, count)
		}
		fmt.Fprintln(&b, "Per-day:")
		for day, bucket := range snap.PerDay {
			fmt.Fprintf(&b, "  %s: queries=%d tokensSaved=%d cacheHits=%d localModelQueries=%d\n",
				day, bucket.Queries, bucket.TokensSaved, bucket.CacheHits, bucket.LocalModelQueries)
		}
		return b.String(), nil
	}

	// format == "recent"
	fmt.Fprintln(&b, "Recent:")
	for _, rec := range s.Metrics.Recent() {
		fmt.Fprintf(&b, "  [%s] tool=%s route=%s tokensUsed=%d tokensSaved=%d latencyMs=%d cacheHit=%v\n",
			rec.Timestamp.Format(time.RFC3339), rec.Tool, rec.Route,
			rec.TokensUsed, rec.TokensSaved, rec.LatencyMs, rec.CacheHit)
	}
	return b.String(), nil
}
