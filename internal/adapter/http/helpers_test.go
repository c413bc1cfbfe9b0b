package http

import (
	"context"
	"time"

	"todoapi/pkg/auth"
)

func ctx() context.Context {
	return context.Background()
}

func authClock(at time.Time) auth.JWTOption {
	return auth.WithClock(func() time.Time { return at })
}
