package stub

import (
	"context"
	"fmt"
	"time"

	"github.com/bitevents/bitevents/internal/model"
)

func ptr[T any](v T) *T { return &v }

// Seed loads demo accounts and a spread of upcoming events so the CLI has
// something to browse against a fresh stub. Returns the demo organizer's
// credentials for convenience logging.
func Seed(ctx context.Context, store *Store, svc *Service) error {
	organizer, err := svc.Register(ctx, model.RegisterRequest{
		FullName:    "Katarína Novák",
		Email:       "organizer@bitevents.sk",
		Password:    "organizer1",
		IsOrganizer: true,
	})
	if err != nil {
		return fmt.Errorf("seed organizer: %w", err)
	}
	if _, err := svc.Register(ctx, model.RegisterRequest{
		FullName: "Demo User",
		Email:    "demo@bitevents.sk",
		Password: "demo12345",
	}); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	now := time.Now()
	day := 24 * time.Hour
	events := []model.EventRequest{
		{
			Name:          "Bratislava Go Meetup",
			Description:   "Monthly meetup of the Bratislava Go community. Talks on generics, profiling and production war stories.",
			Type:          "meetup",
			StartDateTime: now.Add(7 * day),
			Capacity:      ptr(60),
			Venue: model.Venue{
				Name:    "Binarium Hub",
				Address: "Stare Grunty 18",
				City:    "Bratislava",
			},
		},
		{
			Name:          "Kosice Tech Conference",
			Description:   "Two-day conference covering cloud infrastructure, security and data engineering in eastern Slovakia.",
			Type:          "conference",
			StartDateTime: now.Add(21 * day),
			EndDateTime:   ptr(now.Add(22 * day)),
			Capacity:      ptr(400),
			Price:         89,
			Venue: model.Venue{
				Name:    "Kulturpark",
				Address: "Kukucinova 2",
				City:    "Kosice",
			},
		},
		{
			Name:          "Remote Kubernetes Workshop",
			Description:   "Hands-on online workshop: build and operate a cluster from scratch. Bring your own laptop.",
			Type:          "workshop",
			StartDateTime: now.Add(3 * day),
			Capacity:      ptr(25),
			Price:         20,
			Venue: model.Venue{
				Name: "Online",
				City: "online",
			},
		},
		{
			Name:          "BitHack 2026",
			Description:   "48-hour hackathon for student teams. Fintech and green-energy tracks, mentors from local startups.",
			Type:          "hackathon",
			StartDateTime: now.Add(45 * day),
			EndDateTime:   ptr(now.Add(47 * day)),
			Capacity:      ptr(120),
			Venue: model.Venue{
				Name:    "FIIT STU",
				Address: "Ilkovicova 2",
				City:    "Bratislava",
			},
		},
		{
			Name:          "Frontend Fridays: React Server Components",
			Description:   "Evening session on the state of server components, with live coding and pizza.",
			Type:          "meetup",
			StartDateTime: now.Add(14 * day),
			Venue: model.Venue{
				Name:    "HubHub",
				Address: "Nivy Tower, Mlynske Nivy 5",
				City:    "Bratislava",
			},
		},
	}
	for _, req := range events {
		if _, err := store.CreateEvent(ctx, organizer.User.ID, req); err != nil {
			return fmt.Errorf("seed event %q: %w", req.Name, err)
		}
	}
	return nil
}
