package api

import (
	"context"
	"fmt"

	"github.com/bitevents/bitevents/internal/model"
)

// RegisterForEvent registers the authenticated user as an attendee.
func (c *Client) RegisterForEvent(ctx context.Context, eventID int64) (*model.Registration, error) {
	var resp model.Registration
	if err := c.post(ctx, fmt.Sprintf("/registrations/events/%d", eventID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnregisterFromEvent cancels the authenticated user's attendance.
func (c *Client) UnregisterFromEvent(ctx context.Context, eventID int64) error {
	return c.delete(ctx, fmt.Sprintf("/registrations/events/%d", eventID))
}

// MyRegistrations lists every event the authenticated user attends.
func (c *Client) MyRegistrations(ctx context.Context) ([]model.Registration, error) {
	var resp []model.Registration
	if err := c.get(ctx, "/registrations/events/my", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// EventRegistrations lists attendees of one event. Organizer-only; others
// receive a 403.
func (c *Client) EventRegistrations(ctx context.Context, eventID int64) ([]model.Registration, error) {
	var resp []model.Registration
	if err := c.get(ctx, fmt.Sprintf("/registrations/events/%d", eventID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// IsRegistered reports whether the authenticated user attends the event.
func (c *Client) IsRegistered(ctx context.Context, eventID int64) (bool, error) {
	var resp struct {
		IsRegistered bool `json:"isRegistered"`
	}
	if err := c.get(ctx, fmt.Sprintf("/registrations/check/%d", eventID), nil, &resp); err != nil {
		return false, err
	}
	return resp.IsRegistered, nil
}
