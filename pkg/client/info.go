package client

import (
	"context"

	"github.com/OmniNode-ai/omniroute/internal/api"
)

func (c *Client) Info(ctx context.Context) (*api.InfoResponse, string, error) {
	var info api.InfoResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.InfoRoute).
		build(), &info)
	if err != nil {
		return nil, correlation, err
	}
	return &info, correlation, nil
}
