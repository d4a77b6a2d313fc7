package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openradius/radops/internal/grid"
)

// SearchSubscribers fetches one page of a partition. The query is
// forwarded verbatim; ordering and counts come back from the server.
func (c *Client) SearchSubscribers(ctx context.Context, q grid.Query, status SubscriberStatus) ([]Subscriber, PageInfo, error) {
	params := searchParams(q)
	if status != "" {
		params.Set("status", string(status))
	}

	var envelope struct {
		Data []Subscriber `json:"data"`
		PageInfo
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/subscribers", params, nil, &envelope); err != nil {
		return nil, PageInfo{}, fmt.Errorf("search subscribers: %w", err)
	}
	return envelope.Data, envelope.PageInfo, nil
}

// GetSubscriber fetches a single record.
func (c *Client) GetSubscriber(ctx context.Context, id string) (*Subscriber, error) {
	var sub Subscriber
	if err := c.do(ctx, http.MethodGet, "/api/v1/subscribers/"+id, nil, nil, &sub); err != nil {
		return nil, fmt.Errorf("get subscriber %s: %w", id, err)
	}
	return &sub, nil
}

// CreateSubscriber creates a record and returns it with its assigned id.
func (c *Client) CreateSubscriber(ctx context.Context, in SubscriberInput) (*Subscriber, error) {
	var sub Subscriber
	if err := c.do(ctx, http.MethodPost, "/api/v1/subscribers", nil, in, &sub); err != nil {
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	return &sub, nil
}

// UpdateSubscriber replaces a record's editable fields.
func (c *Client) UpdateSubscriber(ctx context.Context, id string, in SubscriberInput) (*Subscriber, error) {
	var sub Subscriber
	if err := c.do(ctx, http.MethodPut, "/api/v1/subscribers/"+id, nil, in, &sub); err != nil {
		return nil, fmt.Errorf("update subscriber %s: %w", id, err)
	}
	return &sub, nil
}

// DeleteSubscriber soft-deletes a record into the trashed partition.
func (c *Client) DeleteSubscriber(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/subscribers/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("delete subscriber %s: %w", id, err)
	}
	return nil
}

// RestoreSubscriber moves a trashed record back to the active partition.
func (c *Client) RestoreSubscriber(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/subscribers/"+id+"/restore", nil, nil, nil); err != nil {
		return fmt.Errorf("restore subscriber %s: %w", id, err)
	}
	return nil
}

// BulkSubscribers applies one action to many records. Partial failure is
// not an error at this layer: the result names the survivors.
func (c *Client) BulkSubscribers(ctx context.Context, action string, ids []string) (*BulkResult, error) {
	body := struct {
		Action string   `json:"action"`
		IDs    []string `json:"ids"`
	}{Action: action, IDs: ids}

	var result BulkResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/subscribers/bulk", nil, body, &result); err != nil {
		return nil, fmt.Errorf("bulk %s subscribers: %w", action, err)
	}
	return &result, nil
}
