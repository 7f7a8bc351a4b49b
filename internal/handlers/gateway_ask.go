package handlers

import (
	"context"
	"time"

	"devgateway/internal/gwerr"
	"devgateway/internal/httpmodel"
	"devgateway/internal/metrics"
	"devgateway/internal/router"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

const askMaxTokens = 1024

// GatewayAsk implements gateway_ask(query, system?) — a direct reasoning
// query routed to tier T2 without an index lookup, added to keep the
// gateway's canonical handler surface small while still exposing the
// local-model HTTP client on a named tool. It never escalates to a
// remote API (§1 non-goals: "does not execute arbitrary remote-model
// calls"): when the router doesn't route to T2, the request fails with
// UpstreamUnavailable rather than falling through to T4.
func (s *ServerContext) GatewayAsk(ctx context.Context, args map[string]any) (any, error) {
	start := time.Now()

	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	if err := security.ValidateQuery(query); err != nil {
		return nil, err
	}
	system := optionalString(args, "system")

	decision := s.Router.Decide(ctx, router.Request{Tool: "gateway_ask", Query: query}, "", nil)
	if decision.Tier != tier.T2 {
		return nil, gwerr.New(gwerr.UpstreamUnavailable, "local model unavailable; gateway_ask does not escalate to a remote API")
	}

	response, err := s.Model.Chat(ctx, []httpmodel.Message{{Role: "user", Content: query}}, askMaxTokens, system)
	if err != nil {
		return nil, err
	}

	s.recordMetric("gateway_ask", tier.T2, metrics.EstimateTokens(len(response)), 0, start, false)
	return response, nil
}
