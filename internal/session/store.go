// Package session holds the portal's in-memory sessions. Sessions live for
// the lifetime of the process only: a restart signs everyone out, which is
// the intended behaviour — the browser cookie carries nothing but an opaque
// ID and the backend token is never persisted anywhere.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

const defaultTTL = 7 * 24 * time.Hour

// Store is a concurrency-safe in-memory ports.SessionStore.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.Session
	ttl       time.Duration
	listeners []func(id string, ev ports.SessionEvent)
	now       func() time.Time
}

// NewStore creates a Store. A non-positive ttl falls back to 7 days,
// matching the backend's own token lifetime.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create assigns a crypto-random ID, stores the session, and notifies
// listeners.
func (s *Store) Create(sess *domain.Session) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	sess.ID = id
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.notify(id, ports.SessionCreated)
	return id, nil
}

// Get returns the session for id. An entry past its TTL is removed and
// reported as absent, so callers treat it exactly like a 401.
func (s *Store) Get(id string) (*domain.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.CreatedAt) > s.ttl {
		s.Delete(id)
		return nil, false
	}
	return sess, true
}

// Delete removes the session and notifies listeners. Unknown IDs are a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if ok {
		s.notify(id, ports.SessionDestroyed)
	}
}

// OnChange registers a listener. Call during startup wiring only.
func (s *Store) OnChange(fn func(id string, ev ports.SessionEvent)) {
	s.listeners = append(s.listeners, fn)
}

// Len returns the number of live entries, expired ones included until their
// next Get.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) notify(id string, ev ports.SessionEvent) {
	for _, fn := range s.listeners {
		fn(id, ev)
	}
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
