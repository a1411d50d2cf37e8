package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bitevents/bitevents/internal/model"
)

const eventTimeLayout = "Mon 02 Jan 2006 15:04"

func formatPrice(p float64) string {
	if p == 0 {
		return "free"
	}
	return fmt.Sprintf("%.2f EUR", p)
}

func formatCity(e *model.Event) string {
	if e.Venue == nil || e.Venue.City == "" {
		return "-"
	}
	return e.Venue.City
}

// renderEventTable prints one row per event in aligned columns.
func renderEventTable(w io.Writer, events []model.Event) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tCITY\tTYPE\tPRICE\tNAME")
	for i := range events {
		e := &events[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.StartDateTime.Local().Format(eventTimeLayout),
			formatCity(e),
			e.Type,
			formatPrice(e.Price),
			e.Name,
		)
	}
	tw.Flush()
}

// renderEventDetail prints the full card for GET /events/{id}.
func renderEventDetail(w io.Writer, d *model.EventDetail) {
	fmt.Fprintf(w, "%s  [#%d]\n", d.Name, d.ID)
	fmt.Fprintf(w, "  %s", d.StartDateTime.Local().Format(eventTimeLayout))
	if d.EndDateTime != nil {
		fmt.Fprintf(w, " - %s", d.EndDateTime.Local().Format(eventTimeLayout))
	}
	fmt.Fprintln(w)
	if d.Venue != nil {
		fmt.Fprintf(w, "  %s, %s (%s)\n", d.Venue.Name, d.Venue.Address, d.Venue.City)
	}
	fmt.Fprintf(w, "  Type: %s   Price: %s   Status: %s\n", d.Type, formatPrice(d.Price), d.Status)

	switch {
	case d.Capacity == nil:
		fmt.Fprintf(w, "  Attendees: %d (no capacity limit)\n", d.RegistrationCount)
	case d.IsFull():
		fmt.Fprintf(w, "  Attendees: %d/%d - FULLY BOOKED\n", d.RegistrationCount, *d.Capacity)
	default:
		fmt.Fprintf(w, "  Attendees: %d/%d (%d spots left)\n", d.RegistrationCount, *d.Capacity, d.Remaining())
	}
	if d.IsUserRegistered {
		fmt.Fprintln(w, "  You are registered for this event.")
	}
	if d.Organizer != nil {
		fmt.Fprintf(w, "  Organized by %s\n", d.Organizer.FullName)
	}
	if d.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", wrap(d.Description, 76))
	}
}

func renderRegistrations(w io.Writer, regs []model.Registration) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKET\tSTATUS\tWHEN\tEVENT")
	for i := range regs {
		r := &regs[i]
		name := "-"
		when := "-"
		if r.Event != nil {
			name = r.Event.Name
			when = r.Event.StartDateTime.Local().Format(eventTimeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.TicketCode, r.Status, when, name)
	}
	tw.Flush()
}

// wrap re-flows text to the given width, preserving the two-space indent on
// continuation lines.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var b strings.Builder
	line := 0
	for i, word := range words {
		if i > 0 {
			if line+1+len(word) > width {
				b.WriteString("\n  ")
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}
