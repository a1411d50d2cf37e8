package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bitevents/bitevents/internal/model"
)

// ListEventsOptions are the query parameters of GET /events. Zero values are
// omitted: an empty search or city list means "no filter", not "match nothing".
type ListEventsOptions struct {
	Search   string
	Cities   []string
	Category string
	Page     int
	Limit    int
}

// ListEvents fetches one page of the event directory.
func (c *Client) ListEvents(ctx context.Context, opts ListEventsOptions) (*model.PagedEvents, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	for _, city := range opts.Cities {
		q.Add("city", city)
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	var resp model.PagedEvents
	if err := c.get(ctx, "/events", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetEvent fetches a single event with registration context.
func (c *Client) GetEvent(ctx context.Context, id int64) (*model.EventDetail, error) {
	var resp model.EventDetail
	if err := c.get(ctx, fmt.Sprintf("/events/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateEvent creates a new event owned by the authenticated organizer.
func (c *Client) CreateEvent(ctx context.Context, req model.EventRequest) (*model.Event, error) {
	var resp model.Event
	if err := c.post(ctx, "/events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateEvent replaces an event the authenticated organizer owns.
func (c *Client) UpdateEvent(ctx context.Context, id int64, req model.EventRequest) (*model.Event, error) {
	var resp model.Event
	if err := c.put(ctx, fmt.Sprintf("/events/%d", id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteEvent removes an event the authenticated organizer owns.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/events/%d", id))
}
