package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token carries a JWT-shaped expiry claim that is
// already in the past. The check deliberately fails open: opaque tokens,
// malformed tokens, and tokens without an exp claim are all treated as valid,
// since the server remains the authority on rejecting them.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}
