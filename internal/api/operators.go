package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListOperators fetches the complete operator list. The operators table is
// small and runs the client-mode pipeline, so there is no paging here.
func (c *Client) ListOperators(ctx context.Context) ([]Operator, error) {
	var envelope struct {
		Data []Operator `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/operators", nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	return envelope.Data, nil
}
