package memory

import (
	"context"
	"sync"
	"time"
)

type attempts struct {
	count   int
	expires time.Time
}

// LoginThrottle counts failed sign-in attempts in process memory.
type LoginThrottle struct {
	mu          sync.Mutex
	entries     map[string]attempts
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewLoginThrottle(maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		entries:     make(map[string]attempts),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func (t *LoginThrottle) Blocked(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.live(key)
	return ok && a.count >= t.maxAttempts, nil
}

func (t *LoginThrottle) RecordFailure(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.live(key)
	if !ok {
		a = attempts{expires: t.now().Add(t.window)}
	}
	a.count++
	t.entries[key] = a
	return nil
}

func (t *LoginThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}

// live returns the entry for key unless its window has passed. Callers hold mu.
func (t *LoginThrottle) live(key string) (attempts, bool) {
	a, ok := t.entries[key]
	if ok && !t.now().Before(a.expires) {
		delete(t.entries, key)
		return attempts{}, false
	}
	return a, ok
}
