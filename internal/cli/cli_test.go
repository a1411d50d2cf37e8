package cli_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/api"
	"github.com/bitevents/bitevents/internal/cli"
	"github.com/bitevents/bitevents/internal/session"
	"github.com/bitevents/bitevents/internal/storage"
	"github.com/bitevents/bitevents/internal/stub"
)

// newTestApp boots a seeded stub server and a CLI wired to it. input feeds
// the interactive prompts.
func newTestApp(t *testing.T, input string) (*cli.App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	store, err := stub.NewStore(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := stub.NewService(store, "test-secret", time.Hour)
	require.NoError(t, stub.Seed(ctx, store, svc))

	logger := zap.NewNop()
	srv := httptest.NewServer(stub.NewRouter(stub.NewHandler(svc, store, logger), logger))
	t.Cleanup(srv.Close)

	sess := session.NewStore(storage.NewMemStore(), logger)
	client := api.New(srv.URL+"/api",
		api.WithTokenSource(sess),
		api.WithUnauthorizedHook(sess.Logout),
	)

	out := &bytes.Buffer{}
	return cli.NewApp(client, sess, logger, out, strings.NewReader(input)), out
}

func TestEventsCommand(t *testing.T) {
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(context.Background(), []string{"events"}))

	assert.Contains(t, out.String(), "Bratislava Go Meetup")
	assert.Contains(t, out.String(), "Kosice Tech Conference")
	assert.Contains(t, out.String(), "Page 1 of 1 (5 events total)")
}

func TestEventsSearchWithoutMatches(t *testing.T) {
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(context.Background(), []string{"events", "-search", "quantum basket weaving"}))

	assert.Contains(t, out.String(), "No events match your filters.")
}

func TestEventDetail(t *testing.T) {
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(context.Background(), []string{"event", "1"}))

	assert.Contains(t, out.String(), "Bratislava Go Meetup")
	assert.Contains(t, out.String(), "Attendees: 0/60")
}

func TestLoginWhoamiLogout(t *testing.T) {
	app, out := newTestApp(t, "demo12345\n")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"login", "-email", "demo@bitevents.sk"}))
	assert.Contains(t, out.String(), "Welcome back, Demo User!")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"whoami"}))
	assert.Contains(t, out.String(), "Demo User <demo@bitevents.sk> (attendee)")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"logout"}))
	require.NoError(t, app.Run(ctx, []string{"whoami"}))
	assert.Contains(t, out.String(), "Not logged in.")
}

func TestLoginRejectsBadEmail(t *testing.T) {
	app, _ := newTestApp(t, "")

	err := app.Run(context.Background(), []string{"login", "-email", "not-an-email"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not look like an email address")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	app, _ := newTestApp(t, "longenough\ndifferent99\n")

	err := app.Run(context.Background(), []string{
		"register", "-name", "Mismatch", "-email", "mismatch@example.com",
	})

	require.Error(t, err)
	assert.Equal(t, "passwords do not match", err.Error())
}

func TestCommandsRequireLogin(t *testing.T) {
	app, _ := newTestApp(t, "")

	err := app.Run(context.Background(), []string{"saved"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestUnknownCommandReturnsUsage(t *testing.T) {
	app, out := newTestApp(t, "")

	err := app.Run(context.Background(), []string{"frobnicate"})

	assert.ErrorIs(t, err, cli.ErrUsage)
	assert.Contains(t, out.String(), "unknown command")
}

func TestBrowseSearchAndQuit(t *testing.T) {
	app, out := newTestApp(t, "search kubernetes\nquit\n")

	require.NoError(t, app.Run(context.Background(), []string{"browse"}))

	text := out.String()
	assert.Contains(t, text, "Remote Kubernetes Workshop")
	assert.Contains(t, text, `Filters: search "kubernetes"`)
	assert.Contains(t, text, "Showing 1 of 1 events")
}

func TestSaveAndAttendFlow(t *testing.T) {
	app, out := newTestApp(t, "demo12345\n")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"login", "-email", "demo@bitevents.sk"}))

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"save", "2"}))
	require.NoError(t, app.Run(ctx, []string{"saved"}))
	assert.Contains(t, out.String(), "Kosice Tech Conference")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"attend", "2"}))
	assert.Contains(t, out.String(), "Ticket code:")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"my-events"}))
	assert.Contains(t, out.String(), "Kosice Tech Conference")

	// Second registration for the same event surfaces the server message.
	err := app.Run(ctx, []string{"attend", "2"})
	require.Error(t, err)
	assert.Equal(t, "You are already registered for this event", err.Error())
}
