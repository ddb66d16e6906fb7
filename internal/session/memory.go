package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps sessions in a mutex-protected map. Suitable for a
// single-process deployment; expired entries are dropped on read, so an
// unconsumed token's entry lingers until someone touches it.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]Session), now: time.Now}
}

func (s *InMemoryStore) Create(_ context.Context, documentPath, epicNumber string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = Session{
		Token:        token,
		DocumentPath: documentPath,
		EPIC:         epicNumber,
		ExpiresAt:    s.now().UTC().Add(ttl),
	}
	return token, nil
}

func (s *InMemoryStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || s.now().UTC().After(sess.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Consume removes the session under the write lock, so the expiry check and
// the delete cannot interleave with another consumer.
func (s *InMemoryStore) Consume(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	delete(s.sessions, token)
	if s.now().UTC().After(sess.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
