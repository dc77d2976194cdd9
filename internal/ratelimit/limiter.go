package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
}

// Limiter is a fixed-window request counter: the counter for a key resets
// wholesale when its window expires, so bursts straddling a window boundary
// are accepted behavior.
type Limiter interface {
	Check(ctx context.Context, key string) (*Result, error)
}
