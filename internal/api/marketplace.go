package api

import (
	"context"
	"net/http"

	"printshop/internal/model"
)

// ListMarketplace returns items listed by other users.
func (c *Client) ListMarketplace(ctx context.Context) ([]model.Item, error) {
	var out []model.Item
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/marketplace", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMyItems returns the caller's own listings with their interests.
func (c *Client) ListMyItems(ctx context.Context) ([]model.Item, error) {
	var out []model.Item
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/marketplace/my-listings", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateItem lists a new item.
func (c *Client) CreateItem(ctx context.Context, item model.NewItem) error {
	r, err := jsonRequest(http.MethodPost, "/api/marketplace", true, item)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// ExpressInterest records a bid on an item.
func (c *Client) ExpressInterest(ctx context.Context, id string, req model.InterestRequest) error {
	r, err := jsonRequest(http.MethodPost, "/api/marketplace/"+escape(id)+"/interested", true, req)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// DeleteItem removes one of the caller's listings.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/marketplace/" + escape(id), auth: true}, nil)
}
