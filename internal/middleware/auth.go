package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aura-survey/builder/internal/auth"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/pkg/response"
)

// ContextUserID is the key for user ID in gin context.
const ContextUserID = "user_id"

// bearerToken extracts the token of an "Authorization: Bearer" header.
// present is false when no Authorization header was sent at all.
func bearerToken(c *gin.Context) (token string, present bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

func attach(c *gin.Context, sess *session.Session) {
	c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
	c.Set(ContextUserID, sess.User.ID)
}

// Auth returns a middleware that requires a valid bearer token and attaches
// the caller's session to the request context.
func Auth(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		if token == "" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		sess, err := sessions.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		case err != nil:
			response.BadGateway(c, "failed to verify token")
			c.Abort()
			return
		}
		attach(c, sess)
		c.Next()
	}
}

// OptionalAuth attaches a session when a valid bearer token is sent and lets
// every other request through anonymously.
func OptionalAuth(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _ := bearerToken(c); token != "" {
			if sess, err := sessions.Authenticate(c.Request.Context(), token); err == nil {
				attach(c, sess)
			}
		}
		c.Next()
	}
}
