// Package guard tracks keys with a destructive call in flight so a second
// dispatch for the same key is rejected instead of racing the first.
package guard

import (
	"context"
	"sync"
	"time"
)

// Guard admits at most one holder per key at a time.
type Guard interface {
	// TryAcquire claims key without blocking. acquired is false when another
	// caller already holds it. ttl bounds how long a claim survives a holder
	// that never releases; zero means no bound.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// InMemory implements Guard for a single process.
type InMemory struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

// NewInMemory creates an empty in-process guard.
func NewInMemory() *InMemory {
	return &InMemory{held: make(map[string]uint64)}
}

// TryAcquire claims key if nobody holds it.
func (g *InMemory) TryAcquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	g.mu.Lock()
	if _, ok := g.held[key]; ok {
		g.mu.Unlock()
		return nil, false, nil
	}
	g.seq++
	token := g.seq
	g.held[key] = token
	g.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			if g.held[key] == token {
				delete(g.held, key)
			}
			g.mu.Unlock()
		})
	}
	if ttl > 0 {
		time.AfterFunc(ttl, release)
	}
	return release, true, nil
}

// Held reports whether key is currently claimed.
func (g *InMemory) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}
