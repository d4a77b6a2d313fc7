package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openradius/radops/internal/grid"
)

// Preferences returns the backend-backed grid.PreferenceStore.
func (c *Client) Preferences() grid.PreferenceStore {
	return prefStore{c: c}
}

type prefStore struct {
	c *Client
}

// Get fetches a table's persisted layout snapshot. A 404 means the
// operator has never customized this table; that is (nil, nil), not an
// error.
func (p prefStore) Get(ctx context.Context, table string) (*grid.Snapshot, error) {
	var snap grid.Snapshot
	err := p.c.do(ctx, http.MethodGet, "/api/v1/preferences/"+table, nil, nil, &snap)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load preference %s: %w", table, err)
	}
	return &snap, nil
}

// Put stores a complete snapshot, replacing whatever was there.
func (p prefStore) Put(ctx context.Context, table string, snap grid.Snapshot) error {
	if err := p.c.do(ctx, http.MethodPut, "/api/v1/preferences/"+table, nil, snap, nil); err != nil {
		return fmt.Errorf("save preference %s: %w", table, err)
	}
	return nil
}

// Delete removes a table's persisted layout. Only the explicit reset
// action calls this.
func (p prefStore) Delete(ctx context.Context, table string) error {
	if err := p.c.do(ctx, http.MethodDelete, "/api/v1/preferences/"+table, nil, nil, nil); err != nil {
		return fmt.Errorf("delete preference %s: %w", table, err)
	}
	return nil
}

var _ grid.PreferenceStore = prefStore{}
