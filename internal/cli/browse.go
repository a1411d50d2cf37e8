package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bitevents/bitevents/internal/query"
)

// cmdBrowse runs the interactive event browser. Each line mutates the query
// controller's filters; the controller fetches in the background and the loop
// waits for it to settle before rendering the next snapshot.
func (a *App) cmdBrowse(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := query.NewController(ctx, query.NewAPIFetcher(a.client),
		query.WithControllerLogger(a.logger))
	ctrl.Start()
	ctrl.Wait()
	a.renderSnapshot(ctrl.Snapshot())

	fmt.Fprintln(a.out, `Type "help" for commands, "quit" to leave.`)
	for {
		line, err := a.readLine("> ")
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			a.browseHelp()
			continue
		case "search", "s":
			ctrl.SetSearch(arg)
		case "city", "c":
			if arg == "" || arg == "all" {
				ctrl.SetCities(nil)
			} else {
				ctrl.SetCities(splitCSV(arg))
			}
		case "type", "t":
			if arg == "all" {
				arg = ""
			}
			ctrl.SetCategory(arg)
		case "more", "m":
			if !ctrl.LoadNextPage() {
				fmt.Fprintln(a.out, "No more events to load.")
				continue
			}
		case "refresh", "r":
			ctrl.Refetch()
		case "open", "o":
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || id <= 0 {
				fmt.Fprintf(a.out, "invalid event id %q\n", arg)
				continue
			}
			if err := a.cmdEvent(ctx, []string{arg}); err != nil {
				fmt.Fprintln(a.out, err)
			}
			continue
		default:
			fmt.Fprintf(a.out, "unknown command %q, try \"help\"\n", cmd)
			continue
		}

		ctrl.Wait()
		a.renderSnapshot(ctrl.Snapshot())
	}
}

func (a *App) renderSnapshot(snap query.Snapshot) {
	if desc := describeFilters(snap.Filters); desc != "" {
		fmt.Fprintf(a.out, "Filters: %s\n", desc)
	}
	switch {
	case snap.Err != "":
		fmt.Fprintf(a.out, "Error: %s\n", snap.Err)
		if len(snap.Events) > 0 {
			fmt.Fprintln(a.out, "Showing previously loaded results:")
			renderEventTable(a.out, snap.Events)
		}
	case len(snap.Events) == 0:
		fmt.Fprintln(a.out, "No events match your filters.")
	default:
		renderEventTable(a.out, snap.Events)
		fmt.Fprintf(a.out, "Showing %d of %d events", len(snap.Events), snap.Total)
		if snap.HasMore() {
			fmt.Fprint(a.out, ` - "more" loads the next page`)
		}
		fmt.Fprintln(a.out)
	}
}

func describeFilters(f query.Filters) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.Search))
	}
	if len(f.Cities) > 0 {
		parts = append(parts, "city "+strings.Join(f.Cities, ","))
	}
	if f.Category != "" {
		parts = append(parts, "type "+f.Category)
	}
	return strings.Join(parts, ", ")
}

func (a *App) browseHelp() {
	fmt.Fprint(a.out, `Commands:
  search <text>   Filter by name/description (empty clears)
  city <list>     Filter by cities, comma-separated ("all" clears)
  type <name>     Filter by event type ("all" clears)
  more            Load the next page
  refresh         Reload the current view
  open <id>       Show full details for one event
  quit            Leave browse mode
`)
}
