package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// SessionStore keeps sessions in a map. Expired sessions are treated as
// absent and removed lazily.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, sess domain.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Expired(s.now()) {
		return errors.New("session is expired")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) ListByUser(_ context.Context, userID string) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []domain.Session
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			continue
		}
		if sess.UserID() == userID {
			out = append(out, cloneSession(sess))
		}
	}
	return out, nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.UserID() == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func cloneSession(sess domain.Session) domain.Session {
	if sess.User != nil {
		sess.User = cloneUser(sess.User)
	}
	return sess
}
