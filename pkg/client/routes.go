package client

import (
	"context"

	"github.com/OmniNode-ai/omniroute/internal/api"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// ListRoutes retrieves the active route plans from the server.
func (c *Client) ListRoutes(ctx context.Context) ([]core.RoutePlan, string, error) {
	var resp []core.RoutePlan
	correlation, err := c.get(ctx, c.url().
		setPath(api.ListRoutesRoute).
		build(), &resp)
	return resp, correlation, err
}

// ListDomains retrieves the configured trust domains.
func (c *Client) ListDomains(ctx context.Context) ([]api.DomainInfo, string, error) {
	var resp []api.DomainInfo
	correlation, err := c.get(ctx, c.url().
		setPath(api.DomainsRoute).
		build(), &resp)
	return resp, correlation, err
}
