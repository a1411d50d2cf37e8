package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bitevents/bitevents/internal/api"
	"github.com/bitevents/bitevents/internal/model"
	"github.com/bitevents/bitevents/internal/query"
)

func (a *App) cmdEvents(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(a.out)
	search := fs.String("search", "", "match against event name and description")
	city := fs.String("city", "", "comma-separated cities (bratislava, kosice, online)")
	category := fs.String("category", "", "event type (conference, meetup, workshop, hackathon)")
	page := fs.Int("page", 1, "page number, starting at 1")
	limit := fs.Int("limit", query.DefaultLimit, "events per page")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	opts := api.ListEventsOptions{
		Search:   *search,
		Category: *category,
		Page:     *page,
		Limit:    *limit,
	}
	if *city != "" {
		opts.Cities = splitCSV(*city)
	}

	resp, err := a.client.ListEvents(ctx, opts)
	if err != nil {
		return a.fail(err)
	}
	if len(resp.Events) == 0 {
		fmt.Fprintln(a.out, "No events match your filters.")
		return nil
	}
	renderEventTable(a.out, resp.Events)
	fmt.Fprintf(a.out, "\nPage %d of %d (%d events total)\n", resp.Page, resp.TotalPages, resp.Total)
	return nil
}

func (a *App) cmdEvent(ctx context.Context, args []string) error {
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	detail, err := a.client.GetEvent(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	renderEventDetail(a.out, detail)
	return nil
}

// eventFlags registers the shared create/update flag set and returns a
// builder that assembles the request after parsing.
func eventFlags(fs *flag.FlagSet) func() (*model.EventRequest, error) {
	name := fs.String("name", "", "event name")
	desc := fs.String("description", "", "event description")
	typ := fs.String("type", "", "conference, meetup, workshop or hackathon")
	start := fs.String("start", "", "start time, RFC 3339 (2026-09-12T18:00:00+02:00)")
	end := fs.String("end", "", "end time, RFC 3339 (optional)")
	capacity := fs.Int("capacity", 0, "maximum attendees (0 = unlimited)")
	price := fs.Float64("price", 0, "ticket price in EUR")
	image := fs.String("image", "", "image URL (optional)")
	venueName := fs.String("venue", "", "venue name")
	venueAddr := fs.String("address", "", "venue street address")
	venueCity := fs.String("city", "", "venue city, or 'online'")

	return func() (*model.EventRequest, error) {
		startAt, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return nil, fmt.Errorf("invalid -start: %v", err)
		}
		req := &model.EventRequest{
			Name:          strings.TrimSpace(*name),
			Description:   strings.TrimSpace(*desc),
			Type:          strings.ToLower(strings.TrimSpace(*typ)),
			StartDateTime: startAt,
			Price:         *price,
			Venue: model.Venue{
				Name:    strings.TrimSpace(*venueName),
				Address: strings.TrimSpace(*venueAddr),
				City:    strings.TrimSpace(*venueCity),
			},
		}
		if *end != "" {
			endAt, err := time.Parse(time.RFC3339, *end)
			if err != nil {
				return nil, fmt.Errorf("invalid -end: %v", err)
			}
			if endAt.Before(startAt) {
				return nil, errors.New("-end must not be before -start")
			}
			req.EndDateTime = &endAt
		}
		if *capacity > 0 {
			req.Capacity = capacity
		}
		if *image != "" {
			req.ImageURL = image
		}
		if req.Name == "" || req.Type == "" || req.Venue.Name == "" || req.Venue.City == "" {
			return nil, errors.New("-name, -type, -venue and -city are required")
		}
		return req, nil
	}
}

func (a *App) cmdCreateEvent(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("create-event", flag.ContinueOnError)
	fs.SetOutput(a.out)
	build := eventFlags(fs)
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	req, err := build()
	if err != nil {
		return err
	}
	event, err := a.client.CreateEvent(ctx, *req)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Event created with id %d.\n", event.ID)
	return nil
}

func (a *App) cmdUpdateEvent(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("expected the event id before the flags")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid event id %q", args[0])
	}
	fs := flag.NewFlagSet("update-event", flag.ContinueOnError)
	fs.SetOutput(a.out)
	build := eventFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return ErrUsage
	}
	req, err := build()
	if err != nil {
		return err
	}
	event, err := a.client.UpdateEvent(ctx, id, *req)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Event %d updated.\n", event.ID)
	return nil
}

func (a *App) cmdDeleteEvent(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	if err := a.client.DeleteEvent(ctx, id); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Event %d deleted.\n", id)
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
