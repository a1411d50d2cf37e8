package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (a *App) cmdDashboard(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	dash, err := a.client.OrganizerDashboard(ctx)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Events: %d   Registrations: %d\n", dash.TotalEvents, dash.TotalRegistrations)
	if len(dash.Events) > 0 {
		fmt.Fprintln(a.out)
		renderEventTable(a.out, dash.Events)
	}
	return nil
}

func (a *App) cmdStats(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	stats, err := a.client.EventStatistics(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "%s  [#%d]\n", stats.EventName, stats.EventID)
	switch {
	case stats.Capacity == nil:
		fmt.Fprintf(a.out, "  Registrations: %d (no capacity limit)\n", stats.TotalRegistrations)
	case stats.AvailableSpots != nil:
		fmt.Fprintf(a.out, "  Registrations: %d/%d (%d spots left)\n",
			stats.TotalRegistrations, *stats.Capacity, *stats.AvailableSpots)
	default:
		fmt.Fprintf(a.out, "  Registrations: %d/%d\n", stats.TotalRegistrations, *stats.Capacity)
	}

	if len(stats.Registrations) > 0 {
		fmt.Fprintln(a.out)
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TICKET\tSTATUS\tREGISTERED")
		for i := range stats.Registrations {
			r := &stats.Registrations[i]
			fmt.Fprintf(tw, "%s\t%s\t%s\n",
				r.TicketCode, r.Status, r.RegistrationDate.Local().Format(eventTimeLayout))
		}
		tw.Flush()
	}
	return nil
}
