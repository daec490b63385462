package client

import (
	"context"
	"sync"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// SessionState holds the client's view of the current session. It starts
// pending; Resolve settles it and wakes every Wait.
type SessionState struct {
	mu      sync.Mutex
	ready   chan struct{}
	pending bool
	session *domain.Session
	err     error
}

func NewSessionState() *SessionState {
	return &SessionState{ready: make(chan struct{}), pending: true}
}

// Pending reports whether the session has not been resolved yet.
func (s *SessionState) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Resolve records the outcome of a session lookup. A nil session with a nil
// error means anonymous.
func (s *SessionState) Resolve(sess *domain.Session, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session, s.err = sess, err
	if s.pending {
		s.pending = false
		close(s.ready)
	}
}

// Reset returns the state to pending, e.g. while a sign-in is in flight.
func (s *SessionState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return
	}
	s.pending = true
	s.session, s.err = nil, nil
	s.ready = make(chan struct{})
}

// Current returns the resolved session, or nil while pending or anonymous.
func (s *SessionState) Current() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Wait blocks until the session is resolved or ctx is done.
func (s *SessionState) Wait(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.err
}
