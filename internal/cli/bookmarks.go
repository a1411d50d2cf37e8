package cli

import (
	"context"
	"fmt"
)

func (a *App) cmdSave(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	if _, err := a.client.SaveEvent(ctx, id); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Event %d saved.\n", id)
	return nil
}

func (a *App) cmdUnsave(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	if err := a.client.UnsaveEvent(ctx, id); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Event %d removed from saved events.\n", id)
	return nil
}

func (a *App) cmdSaved(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	events, err := a.client.SavedEvents(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No saved events yet.")
		return nil
	}
	renderEventTable(a.out, events)
	return nil
}

func (a *App) cmdAttend(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	reg, err := a.client.RegisterForEvent(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "You are registered. Ticket code: %s\n", reg.TicketCode)
	return nil
}

func (a *App) cmdUnattend(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(args, "event")
	if err != nil {
		return err
	}
	if err := a.client.UnregisterFromEvent(ctx, id); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Registration for event %d cancelled.\n", id)
	return nil
}

func (a *App) cmdMyRegistrations(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	regs, err := a.client.MyRegistrations(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(regs) == 0 {
		fmt.Fprintln(a.out, "You are not registered for any events.")
		return nil
	}
	renderRegistrations(a.out, regs)
	return nil
}
