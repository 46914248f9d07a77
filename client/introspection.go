package client

import (
	"context"
	"fmt"

	"github.com/Yamashou/gqlblock/introspection"
)

// Introspect runs the introspection query against the client's endpoint.
func (c *Client) Introspect(ctx context.Context, options ...Option) (*introspection.Query, error) {
	var res introspection.Query
	if err := c.Post(ctx, introspection.OperationName, introspection.Document, nil, &res, options...); err != nil {
		return nil, fmt.Errorf("introspection query failed: %w", err)
	}

	return &res, nil
}
