package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/model"
	"github.com/bitevents/bitevents/internal/storage"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": float64(1), "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func tokenWithoutExpiry(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(1)}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func testUser() model.User {
	return model.User{ID: 1, FullName: "Test User", Email: "test@example.com"}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, tokenExpired("", now), "empty token is always expired")
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Hour)), now))
	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Hour)), now))

	// Tokens the client cannot parse are treated as valid; the server is
	// the authority and will answer 401 if it disagrees.
	assert.False(t, tokenExpired("opaque-session-token", now))
	assert.False(t, tokenExpired("a.b.c", now))
	assert.False(t, tokenExpired(tokenWithoutExpiry(t), now))
}

func TestFreshStoreIsAnonymous(t *testing.T) {
	s := NewStore(storage.NewMemStore(), zap.NewNop())

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
}

func TestLoginPersistsPair(t *testing.T) {
	mem := storage.NewMemStore()
	s := NewStore(mem, zap.NewNop())
	token := signedToken(t, time.Now().Add(time.Hour))

	s.Login(testUser(), token)

	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.User())
	assert.Equal(t, "test@example.com", s.User().Email)
	assert.Equal(t, token, s.Token())

	// A second store over the same storage picks the session back up.
	restored := NewStore(mem, zap.NewNop())
	assert.True(t, restored.IsAuthenticated())
	require.NotNil(t, restored.User())
	assert.Equal(t, int64(1), restored.User().ID)
	assert.Equal(t, token, restored.Token())
}

func TestLogoutClearsPair(t *testing.T) {
	mem := storage.NewMemStore()
	s := NewStore(mem, zap.NewNop())
	s.Login(testUser(), signedToken(t, time.Now().Add(time.Hour)))

	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	_, ok := mem.Get("user")
	assert.False(t, ok)
	_, ok = mem.Get("authToken")
	assert.False(t, ok)
}

func TestExpiredPersistedSessionIsDiscarded(t *testing.T) {
	mem := storage.NewMemStore()
	first := NewStore(mem, zap.NewNop())
	first.Login(testUser(), signedToken(t, time.Now().Add(-time.Minute)))

	s := NewStore(mem, zap.NewNop())

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	_, ok := mem.Get("authToken")
	assert.False(t, ok, "expired token must be removed from storage")
	_, ok = mem.Get("user")
	assert.False(t, ok, "user must be removed together with its token")
}

func TestOpaqueTokenStaysAuthenticated(t *testing.T) {
	mem := storage.NewMemStore()
	s := NewStore(mem, zap.NewNop())

	s.Login(testUser(), "opaque-session-token")

	assert.True(t, s.IsAuthenticated())
	restored := NewStore(mem, zap.NewNop())
	assert.True(t, restored.IsAuthenticated())
}

func TestLoginWithExpiredTokenIsNotAuthenticated(t *testing.T) {
	s := NewStore(storage.NewMemStore(), zap.NewNop())

	s.Login(testUser(), signedToken(t, time.Now().Add(-time.Second)))

	// No network call is involved; the answer comes from the exp claim alone.
	assert.False(t, s.IsAuthenticated())
}

func TestExpiryIsEvaluatedLazily(t *testing.T) {
	s := NewStore(storage.NewMemStore(), zap.NewNop())
	s.Login(testUser(), signedToken(t, time.Now().Add(50*time.Millisecond)))
	require.True(t, s.IsAuthenticated())

	// No timer flips the flag; the next read after expiry just computes
	// a different answer from the same stored pair.
	time.Sleep(80 * time.Millisecond)
	assert.False(t, s.IsAuthenticated())
	assert.NotNil(t, s.User(), "the pair itself is untouched")
	assert.NotEmpty(t, s.Token())
}

func TestSubscribeObservesLoginAndLogout(t *testing.T) {
	s := NewStore(storage.NewMemStore(), zap.NewNop())

	var got []Session
	unsubscribe := s.Subscribe(func(snap Session) { got = append(got, snap) })

	s.Login(testUser(), "tok")
	s.Logout()

	require.Len(t, got, 2)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "tok", got[0].Token)
	assert.Nil(t, got[1].User)
	assert.Empty(t, got[1].Token)

	unsubscribe()
	s.Login(testUser(), "tok2")
	assert.Len(t, got, 2, "no notifications after unsubscribe")
}

func TestSetUserKeepsTokenAndPersists(t *testing.T) {
	mem := storage.NewMemStore()
	s := NewStore(mem, zap.NewNop())
	s.Login(testUser(), "tok")

	var got []Session
	s.Subscribe(func(snap Session) { got = append(got, snap) })

	renamed := testUser()
	renamed.FullName = "Renamed User"
	s.SetUser(renamed)

	require.NotNil(t, s.User())
	assert.Equal(t, "Renamed User", s.User().FullName)
	assert.Equal(t, "tok", s.Token(), "the token is untouched")

	raw, ok := mem.Get("user")
	require.True(t, ok)
	assert.Contains(t, raw, "Renamed User")

	require.Len(t, got, 1)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "Renamed User", got[0].User.FullName)
	assert.Equal(t, "tok", got[0].Token)
}

func TestSetUserIsNoOpWhenAnonymous(t *testing.T) {
	mem := storage.NewMemStore()
	s := NewStore(mem, zap.NewNop())

	notified := 0
	s.Subscribe(func(Session) { notified++ })

	s.SetUser(testUser())

	assert.Nil(t, s.User())
	assert.False(t, s.IsAuthenticated())
	_, ok := mem.Get("user")
	assert.False(t, ok)
	assert.Zero(t, notified)
}

func TestCorruptPersistedUserIsTolerated(t *testing.T) {
	mem := storage.NewMemStore()
	require.NoError(t, mem.Set("authToken", "opaque-session-token"))
	require.NoError(t, mem.Set("user", "{not json"))

	s := NewStore(mem, zap.NewNop())

	// Token survives, user does not; authentication requires both.
	assert.Equal(t, "opaque-session-token", s.Token())
	assert.Nil(t, s.User())
	assert.False(t, s.IsAuthenticated())
}
