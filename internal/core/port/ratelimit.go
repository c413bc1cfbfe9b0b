package port

import (
	"context"
	"time"
)

// RateLimitStore counts hits per key inside a fixed window. The first hit of
// a window starts it; Increment returns the count including this hit.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
	Close() error
}
