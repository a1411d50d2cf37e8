package api

import (
	"context"
	"fmt"

	"github.com/bitevents/bitevents/internal/model"
)

// SaveEvent bookmarks an event for the authenticated user.
func (c *Client) SaveEvent(ctx context.Context, eventID int64) (*model.SavedEvent, error) {
	var resp model.SavedEvent
	if err := c.post(ctx, fmt.Sprintf("/saved-events/%d", eventID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnsaveEvent removes a bookmark.
func (c *Client) UnsaveEvent(ctx context.Context, eventID int64) error {
	return c.delete(ctx, fmt.Sprintf("/saved-events/%d", eventID))
}

// SavedEvents lists the authenticated user's bookmarked events.
func (c *Client) SavedEvents(ctx context.Context) ([]model.Event, error) {
	var resp []model.Event
	if err := c.get(ctx, "/saved-events", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// IsEventSaved reports whether the authenticated user bookmarked the event.
func (c *Client) IsEventSaved(ctx context.Context, eventID int64) (bool, error) {
	var resp struct {
		IsSaved bool `json:"isSaved"`
	}
	if err := c.get(ctx, fmt.Sprintf("/saved-events/check/%d", eventID), nil, &resp); err != nil {
		return false, err
	}
	return resp.IsSaved, nil
}
