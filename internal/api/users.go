package api

import (
	"context"
	"net/http"

	"printshop/internal/model"
)

// Register creates a user account. The service returns no session.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	r, err := jsonRequest(http.MethodPost, "/api/users/register", false, reg)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// LoginUser authenticates an ordinary user.
func (c *Client) LoginUser(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	return c.login(ctx, "/api/users/login", creds)
}

// LoginAdmin authenticates an administrator.
func (c *Client) LoginAdmin(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	return c.login(ctx, "/api/admin/login", creds)
}

func (c *Client) login(ctx context.Context, path string, creds model.Credentials) (model.LoginResult, error) {
	var out model.LoginResult
	r, err := jsonRequest(http.MethodPost, path, false, creds)
	if err != nil {
		return out, err
	}
	if err := c.do(ctx, r, &out); err != nil {
		return model.LoginResult{}, err
	}
	return out, nil
}
