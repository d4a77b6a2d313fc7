package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openradius/radops/internal/grid"
)

// SearchRadiusUsers fetches one page of RADIUS accounts.
func (c *Client) SearchRadiusUsers(ctx context.Context, q grid.Query) ([]RadiusUser, PageInfo, error) {
	var envelope struct {
		Data []RadiusUser `json:"data"`
		PageInfo
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/radius-users", searchParams(q), nil, &envelope); err != nil {
		return nil, PageInfo{}, fmt.Errorf("search radius users: %w", err)
	}
	return envelope.Data, envelope.PageInfo, nil
}

// UpdateRadiusUser replaces an account's editable fields.
func (c *Client) UpdateRadiusUser(ctx context.Context, id string, in RadiusUserInput) (*RadiusUser, error) {
	var user RadiusUser
	if err := c.do(ctx, http.MethodPut, "/api/v1/radius-users/"+id, nil, in, &user); err != nil {
		return nil, fmt.Errorf("update radius user %s: %w", id, err)
	}
	return &user, nil
}

// DeleteRadiusUser removes an account.
func (c *Client) DeleteRadiusUser(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/radius-users/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("delete radius user %s: %w", id, err)
	}
	return nil
}
