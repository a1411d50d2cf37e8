package api

import (
	"context"

	"github.com/bitevents/bitevents/internal/model"
)

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp model.User
	if err := c.get(ctx, "/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile changes the display name and/or profile picture.
func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (*model.User, error) {
	var resp model.User
	if err := c.put(ctx, "/users/me", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, req model.ChangePasswordRequest) error {
	return c.put(ctx, "/users/me/password", req, nil)
}

// DeleteAccount permanently removes the authenticated user's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.delete(ctx, "/users/me")
}
