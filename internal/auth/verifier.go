// Package auth gates requests on the remote verification endpoint and keeps
// the resulting sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/internal/wire"
)

var (
	// ErrInvalidToken is returned for a missing token or one the verify endpoint rejects.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for a JWT whose exp has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Remote is the verification endpoint.
type Remote interface {
	VerifyToken(ctx context.Context, token string) (*wire.Verification, error)
}

// Verifier decides whether a bearer token is allowed in. The token content is
// only read for its expiry; the remote endpoint has the final word.
type Verifier struct {
	remote Remote
	logger *zap.Logger
	now    func() time.Time
}

// NewVerifier creates a verifier over remote.
func NewVerifier(remote Remote, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{remote: remote, logger: logger, now: time.Now}
}

// Verify returns the user behind token.
func (v *Verifier) Verify(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrInvalidToken
	}
	if expired(token, v.now()) {
		return models.User{}, ErrTokenExpired
	}
	res, err := v.remote.VerifyToken(ctx, token)
	if err != nil {
		v.logger.Warn("token verification failed", zap.Error(err))
		return models.User{}, fmt.Errorf("verify token: %w", err)
	}
	if !res.Valid {
		return models.User{}, ErrInvalidToken
	}
	return res.User.ToUser(), nil
}

// Sessions resolves bearer tokens to sessions, verifying a token only when
// no stored session exists for it.
type Sessions struct {
	verifier *Verifier
	store    session.Store
	ttl      time.Duration
	logger   *zap.Logger
}

// NewSessions creates a resolver. Sessions live for ttl after verification.
func NewSessions(verifier *Verifier, store session.Store, ttl time.Duration, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{verifier: verifier, store: store, ttl: ttl, logger: logger}
}

// Authenticate returns the session for token, creating it on first use.
func (s *Sessions) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	id := session.Key(token)
	if expired(token, s.verifier.now()) {
		_ = s.store.Clear(ctx, id)
		return nil, ErrTokenExpired
	}

	sess, err := s.store.Load(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		// Store failures fall through to remote verification.
		s.logger.Warn("session load failed", zap.Error(err))
	}

	user, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	sess = session.New(token, user)
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		s.logger.Warn("session save failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return sess, nil
}

// End clears session id.
func (s *Sessions) End(ctx context.Context, id string) error {
	return s.store.Clear(ctx, id)
}
