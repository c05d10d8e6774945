package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiresAt reads the exp claim of a JWT without checking its signature.
// ok is false for tokens that are not JWTs or carry no exp.
func expiresAt(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// expired reports whether token is a JWT whose exp is not after now.
func expired(token string, now time.Time) bool {
	exp, ok := expiresAt(token)
	return ok && !now.Before(exp)
}
