// Package session holds the authenticated caller of a request. A session is
// hydrated from a Store at the start of a request, created after a
// successful verification, and cleared on logout.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/aura-survey/builder/internal/models"
)

// ErrNotFound is returned by Load for a missing or expired session.
var ErrNotFound = errors.New("session not found")

// Session is one signed-in caller.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

// New creates a session for token.
func New(token string, user models.User) *Session {
	return &Session{ID: Key(token), Token: token, User: user, CreatedAt: time.Now().UTC()}
}

// Key derives the session id of a bearer token, so raw tokens never appear
// in store keys or logs.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Store persists sessions between requests.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Clear(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

type entry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]entry), now: time.Now}
}

// Load returns a copy of session id.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

// Save stores s for ttl; zero ttl never expires.
func (m *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entry{session: *s}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.sessions[s.ID] = e
	return nil
}

// Clear removes session id.
func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
