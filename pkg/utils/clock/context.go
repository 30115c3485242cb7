package clock

import (
	"context"
	"time"
)

type ctxClockKey struct{}

type Clock func() time.Time

func Now(ctx context.Context) time.Time {
	clock, ok := ctx.Value(ctxClockKey{}).(Clock)
	if !ok {
		return time.Now()
	}
	return clock()
}

func Since(ctx context.Context, t time.Time) time.Duration {
	return Now(ctx).Sub(t)
}

func With(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, ctxClockKey{}, clock)
}

type ctxSleeperKey struct{}

// Sleeper blocks for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

func WithSleeper(ctx context.Context, sleeper Sleeper) context.Context {
	return context.WithValue(ctx, ctxSleeperKey{}, sleeper)
}

// Sleep waits for d. It returns ctx.Err() when the context is cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
	if sleeper, ok := ctx.Value(ctxSleeperKey{}).(Sleeper); ok {
		return sleeper(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
