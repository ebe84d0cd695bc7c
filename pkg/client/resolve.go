package client

import (
	"context"

	"github.com/OmniNode-ai/omniroute/internal/api"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Resolve asks the server to resolve a capability dependency. An exhausted
// resolution is a valid result: inspect Resolved and the per-tier trail.
func (c *Client) Resolve(ctx context.Context, payload api.ResolvePayload) (*api.ResolveResult, string, error) {
	var result api.ResolveResult
	correlation, err := c.post(ctx, c.url().
		setPath(api.ResolveRoute).
		build(), payload, &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}

// Explain retrieves the full per-tier trace for a dependency, or replays a
// past request when ReplayID is set.
func (c *Client) Explain(ctx context.Context, payload api.ExplainPayload) (*core.ResolutionTrace, string, error) {
	var trace core.ResolutionTrace
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), payload, &trace)
	if err != nil {
		return nil, correlation, err
	}
	return &trace, correlation, nil
}
