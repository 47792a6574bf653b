package redis

import (
	"context"

	"github.com/kbukum/tashkeel/provider"
)

var _ provider.Provider = (*Client)(nil)

// Name returns "redis".
func (c *Client) Name() string { return "redis" }

// IsAvailable pings the server unless the client is closed.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return !c.Closed() && c.Ping(ctx) == nil
}
