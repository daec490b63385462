package memory

import (
	"context"
	"testing"
	"time"
)

func TestLoginThrottle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	th := NewLoginThrottle(2, time.Minute)
	th.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if blocked, _ := th.Blocked(ctx, "a@example.com"); blocked {
			t.Fatalf("blocked after %d failures", i)
		}
		_ = th.RecordFailure(ctx, "a@example.com")
	}
	if blocked, _ := th.Blocked(ctx, "a@example.com"); !blocked {
		t.Fatal("expected key to be blocked")
	}
	if blocked, _ := th.Blocked(ctx, "b@example.com"); blocked {
		t.Fatal("other keys must not be blocked")
	}

	now = now.Add(time.Minute)
	if blocked, _ := th.Blocked(ctx, "a@example.com"); blocked {
		t.Fatal("expected block to lift after the window")
	}

	_ = th.RecordFailure(ctx, "a@example.com")
	_ = th.RecordFailure(ctx, "a@example.com")
	_ = th.Reset(ctx, "a@example.com")
	if blocked, _ := th.Blocked(ctx, "a@example.com"); blocked {
		t.Fatal("expected reset to clear failures")
	}
}
