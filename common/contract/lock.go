package contract

import (
	"context"
	"log/slog"
	"time"
)

// Locker is a cross-instance mutual-exclusion primitive with bounded wait
// and automatic lease expiry. TryAcquire returns an opaque token on
// success and errs.ErrLockAcquisitionFailed once wait is exhausted.
type Locker interface {
	TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (string, error)
	Release(ctx context.Context, key, token string) error
}

// WithLock runs fn while holding the named lock. The lock is released on
// every exit path, including fn failure and panic.
func WithLock[T any](ctx context.Context, l Locker, key string, wait, lease time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	token, err := l.TryAcquire(ctx, key, wait, lease)
	if err != nil {
		return zero, err
	}

	defer func() {
		if err := l.Release(context.WithoutCancel(ctx), key, token); err != nil {
			slog.ErrorContext(ctx, "failed to release lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	return fn(ctx)
}
