package generate

import (
	"context"
	"time"
)

// timeoutPolicy bounds a single generation call.
type timeoutPolicy time.Duration

func (t timeoutPolicy) apply(ctx context.Context) (context.Context, context.CancelFunc) {
	if t <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(t))
}
