package router

import (
	"context"
	"time"

	"devgateway/internal/cache"
	"devgateway/internal/logging"

	"golang.org/x/sync/errgroup"
)

// cleanupSweepInterval is the cache-expiry sweep cadence (§5).
const cleanupSweepInterval = 5 * time.Minute

// StartCleanupSweep runs the cache's expired-entry sweep on a 5-minute
// timer until ctx is cancelled. It runs as a goroutine of g, so a caller
// running it alongside the RPC loop can wait on both with a single
// g.Wait(). The sweep returns nil, and only once ctx is cancelled, so it
// never cancels the group itself.
func StartCleanupSweep(ctx context.Context, g *errgroup.Group, c *cache.Cache) {
	g.Go(func() error {
		ticker := time.NewTicker(cleanupSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed := c.CleanupExpired()
				if removed > 0 {
					logging.CacheDebug("cleanup sweep removed %d expired entries", removed)
				}
			}
		}
	})
}
