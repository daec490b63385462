package client

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/guard"
)

// Navigation is the outcome of a guarded navigation.
type Navigation struct {
	Decision guard.Decision
	// Target is where to go: the requested path on Allow, otherwise the
	// redirect location.
	Target string
}

// Navigator applies the access guard to client-side navigation using the
// client's session state.
type Navigator struct {
	guard *guard.Guard
	state guard.SessionSource
}

func NewNavigator(g *guard.Guard, state guard.SessionSource) *Navigator {
	if g == nil {
		g = guard.New()
	}
	return &Navigator{guard: g, state: state}
}

// Navigate decides whether path may be entered. A session still pending when
// the guard's wait expires is treated as anonymous and guard.ErrSessionPending
// is returned with the decision.
func (n *Navigator) Navigate(ctx context.Context, path string) (Navigation, error) {
	d, err := n.guard.Check(ctx, path, n.state)

	target := n.guard.Target(d)
	if d == guard.Allow {
		target = path
	}
	return Navigation{Decision: d, Target: target}, err
}
