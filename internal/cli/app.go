// Package cli implements the terminal front end: one-shot subcommands for
// every API operation plus an interactive browse mode backed by the query
// controller.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/api"
	"github.com/bitevents/bitevents/internal/session"
)

// App holds the wiring shared by all subcommands.
type App struct {
	client  *api.Client
	session *session.Store
	logger  *zap.Logger
	out     io.Writer
	in      *bufio.Reader
}

// NewApp constructs the CLI front end.
func NewApp(client *api.Client, sess *session.Store, logger *zap.Logger, out io.Writer, in io.Reader) *App {
	return &App{client: client, session: sess, logger: logger, out: out, in: bufio.NewReader(in)}
}

// ErrUsage signals that the command line could not be understood; main prints
// usage and exits nonzero without an extra error line.
var ErrUsage = errors.New("usage")

// Run dispatches a subcommand. The returned error is already user-readable.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami()
	case "events":
		return a.cmdEvents(ctx, rest)
	case "event":
		return a.cmdEvent(ctx, rest)
	case "create-event":
		return a.cmdCreateEvent(ctx, rest)
	case "update-event":
		return a.cmdUpdateEvent(ctx, rest)
	case "delete-event":
		return a.cmdDeleteEvent(ctx, rest)
	case "save":
		return a.cmdSave(ctx, rest)
	case "unsave":
		return a.cmdUnsave(ctx, rest)
	case "saved":
		return a.cmdSaved(ctx)
	case "attend":
		return a.cmdAttend(ctx, rest)
	case "unattend":
		return a.cmdUnattend(ctx, rest)
	case "my-events":
		return a.cmdMyRegistrations(ctx)
	case "profile":
		return a.cmdProfile(ctx, rest)
	case "password":
		return a.cmdPassword(ctx, rest)
	case "delete-account":
		return a.cmdDeleteAccount(ctx, rest)
	case "dashboard":
		return a.cmdDashboard(ctx)
	case "stats":
		return a.cmdStats(ctx, rest)
	case "browse":
		return a.cmdBrowse(ctx)
	case "help", "-h", "--help":
		a.usage()
		return nil
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n", cmd)
		a.usage()
		return ErrUsage
	}
}

func (a *App) usage() {
	fmt.Fprint(a.out, `bitevents - IT community events directory

Usage:
  bitevents <command> [flags]

Account:
  register       Create an account (-name, -email, -organizer)
  login          Sign in (-email)
  logout         Sign out and forget the stored session
  whoami         Show the signed-in user
  profile        Show or update the profile (-name, -picture)
  password       Change the password
  delete-account Permanently delete the account

Events:
  events         List events (-search, -city, -category, -page, -limit)
  event <id>     Show one event with availability
  browse         Interactive browsing with live search and paging
  save <id>      Bookmark an event        unsave <id>   Remove a bookmark
  saved          List bookmarked events
  attend <id>    Register for an event    unattend <id> Cancel a registration
  my-events      List events you attend

Organizer:
  create-event   Publish a new event
  update-event   Edit an event (<id> plus the same flags as create-event)
  delete-event   Remove an event
  dashboard      Totals across your events
  stats <id>     Registration statistics for one event

Environment:
  BITEVENTS_API_URL    API base URL (default http://localhost:8080/api)
  BITEVENTS_STATE_FILE Session state location
`)
}

// requireAuth fails fast when no usable session is stored, sparing a round
// trip that would come back 401 anyway.
func (a *App) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return errors.New("you are not logged in. Run 'bitevents login' first")
	}
	return nil
}

// fail converts an API error into its user-facing message. A 401 already
// cleared the session via the unauthorized hook, and the message it maps to
// tells the user to log in again.
func (a *App) fail(err error) error {
	return errors.New(api.Message(err))
}

func parseID(args []string, noun string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one argument: the %s id", noun)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", noun, args[0])
	}
	return id, nil
}
