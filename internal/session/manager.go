// Package session scopes one compiler instance to one logical user session.
// State is in-memory only; an idle session is reclaimed by the janitor.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"sheetstack/domain/compile"

	"github.com/google/uuid"
)

// Session owns the compiler for one user. Operations are serialized through
// Do, so concurrent requests on the same session cannot race the
// empty-to-seeded transition or the row-append order.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.Mutex
	compiler *compile.Compiler
	lastSeen time.Time
}

// Do runs fn against the session's compiler while holding the session lock
// and marks the session as recently used.
func (s *Session) Do(fn func(*compile.Compiler) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return fn(s.compiler)
}

// LastSeen returns the time of the most recent operation.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager is the registry of live sessions, keyed by uuid.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	opts     compile.Options
	ttl      time.Duration
}

// NewManager creates an empty session registry.
func NewManager(opts compile.Options, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		opts:     opts,
		ttl:      ttl,
	}
}

// Create registers a new session with a fresh compiler.
func (m *Manager) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		compiler:  compile.New(m.opts),
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[SessionManager] Created session %s", s.ID)
	return s
}

// Get returns the session for the ID, if it is still live.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate resolves a session from a request-supplied ID, creating a new
// one when the ID is absent, malformed, or expired.
func (m *Manager) GetOrCreate(id string) *Session {
	if parsed, err := uuid.Parse(id); err == nil {
		if s, ok := m.Get(parsed); ok {
			return s
		}
	}
	return m.Create()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired removes sessions idle longer than the manager's TTL and
// returns how many were dropped.
func (m *Manager) CleanupExpired() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SessionManager] Expired %d idle sessions (%d live)", removed, len(m.sessions))
	}
	return removed
}

// RunJanitor periodically reclaims idle sessions until the context is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.CleanupExpired()
		}
	}
}
