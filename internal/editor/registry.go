// Package editor holds the drafts open in editing sessions and exposes the
// draft operations over HTTP.
package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/draft"
)

// ErrDraftNotFound is returned for an unknown draft or one owned by another session.
var ErrDraftNotFound = errors.New("draft not found")

type entry struct {
	store   *draft.Store
	owner   string
	touched time.Time
}

// Registry holds open drafts per editor id (thread-safe). Drafts untouched
// for longer than the idle window are discarded on the next Open.
type Registry struct {
	mu     sync.RWMutex
	drafts map[string]*entry
	idle   time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewRegistry creates an empty registry. Zero idle keeps drafts until closed.
func NewRegistry(idle time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{drafts: make(map[string]*entry), idle: idle, now: time.Now, logger: logger}
}

// Open registers store for owner and returns its editor id.
func (reg *Registry) Open(owner string, store *draft.Store) string {
	id := uuid.NewString()
	now := reg.now()
	reg.mu.Lock()
	stale := reg.sweepLocked(now)
	reg.drafts[id] = &entry{store: store, owner: owner, touched: now}
	reg.mu.Unlock()

	for _, s := range stale {
		s.Discard()
	}
	if len(stale) > 0 {
		reg.logger.Info("discarded idle drafts", zap.Int("drafts", len(stale)))
	}
	return id
}

// Get returns the draft id if owner opened it.
func (reg *Registry) Get(owner, id string) (*draft.Store, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e := reg.drafts[id]
	if e == nil || e.owner != owner {
		return nil, ErrDraftNotFound
	}
	e.touched = reg.now()
	return e.store, nil
}

// Close discards draft id and removes it from the registry.
func (reg *Registry) Close(owner, id string) error {
	reg.mu.Lock()
	e := reg.drafts[id]
	if e == nil || e.owner != owner {
		reg.mu.Unlock()
		return ErrDraftNotFound
	}
	delete(reg.drafts, id)
	reg.mu.Unlock()
	e.store.Discard()
	return nil
}

// DiscardOwner closes every draft of owner and returns how many there were.
func (reg *Registry) DiscardOwner(owner string) int {
	reg.mu.Lock()
	var closed []*draft.Store
	for id, e := range reg.drafts {
		if e.owner == owner {
			closed = append(closed, e.store)
			delete(reg.drafts, id)
		}
	}
	reg.mu.Unlock()
	for _, s := range closed {
		s.Discard()
	}
	return len(closed)
}

// Len returns the number of open drafts.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.drafts)
}

func (reg *Registry) sweepLocked(now time.Time) []*draft.Store {
	if reg.idle <= 0 {
		return nil
	}
	var stale []*draft.Store
	for id, e := range reg.drafts {
		if now.Sub(e.touched) > reg.idle {
			stale = append(stale, e.store)
			delete(reg.drafts, id)
		}
	}
	return stale
}
