package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitevents/bitevents/internal/model"
)

// staticTokens is a TokenSource with a fixed token.
type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func TestRequestCarriesAuthAndCorrelationHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(model.User{ID: 7})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticTokens("tok-123")))
	user, err := c.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
}

func TestAnonymousRequestOmitsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.PagedEvents{Page: 1, Limit: 12})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticTokens("")))
	_, err := c.ListEvents(context.Background(), ListEventsOptions{})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestListEventsQueryEncoding(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(model.PagedEvents{Page: 2, Limit: 5})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListEvents(context.Background(), ListEventsOptions{
		Search:   "golang",
		Cities:   []string{"bratislava", "online"},
		Category: "meetup",
		Page:     2,
		Limit:    5,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, gotQuery["search"])
	assert.Equal(t, []string{"bratislava", "online"}, gotQuery["city"])
	assert.Equal(t, []string{"meetup"}, gotQuery["category"])
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"5"}, gotQuery["limit"])
}

func TestListEventsOmitsZeroValues(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(model.PagedEvents{Page: 1, Limit: 12})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListEvents(context.Background(), ListEventsOptions{})

	require.NoError(t, err)
	assert.Empty(t, gotQuery, "no filters means no query string at all")
}

func TestServerMessageReachesCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(model.ErrorResponse{Message: "Event is fully booked"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.RegisterForEvent(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, "Event is fully booked", Message(err))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestNonJSONErrorBodyFallsBackToStatusMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetEvent(context.Background(), 1)

	assert.Equal(t, msgServerError, Message(err))
}

func TestTransportFailureMapsToNetworkMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := New(srv.URL)
	_, err := c.GetEvent(context.Background(), 1)

	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Equal(t, msgNetwork, apiErr.Message)
}

func TestUnauthorizedHookFiresForProtectedPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookCalls := 0
	c := New(srv.URL, WithUnauthorizedHook(func() { hookCalls++ }))
	_, err := c.Me(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, msgUnauthorized, Message(err))
	assert.Equal(t, 1, hookCalls)
}

func TestUnauthorizedHookSkipsAuthEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(model.ErrorResponse{Message: "Invalid email or password"})
	}))
	defer srv.Close()

	hookCalls := 0
	c := New(srv.URL, WithUnauthorizedHook(func() { hookCalls++ }))
	_, err := c.Login(context.Background(), model.LoginRequest{Email: "a@b.c", Password: "wrong"})

	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", Message(err))
	assert.Zero(t, hookCalls, "a failed login is not a session loss")
}
