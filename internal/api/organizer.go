package api

import (
	"context"
	"fmt"

	"github.com/bitevents/bitevents/internal/model"
)

// OrganizerDashboard aggregates the authenticated organizer's events and
// registration totals.
func (c *Client) OrganizerDashboard(ctx context.Context) (*model.OrganizerDashboard, error) {
	var resp model.OrganizerDashboard
	if err := c.get(ctx, "/organizer/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OrganizerEvents lists the events the authenticated organizer owns.
func (c *Client) OrganizerEvents(ctx context.Context) ([]model.Event, error) {
	var resp []model.Event
	if err := c.get(ctx, "/organizer/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// EventStatistics fetches registration statistics for one owned event.
func (c *Client) EventStatistics(ctx context.Context, eventID int64) (*model.EventStatistics, error) {
	var resp model.EventStatistics
	if err := c.get(ctx, fmt.Sprintf("/organizer/events/%d/statistics", eventID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
