package ports

import "context"

// LoginThrottle limits failed sign-in attempts per account key.
type LoginThrottle interface {
	// Blocked reports whether key has exhausted its attempts.
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
