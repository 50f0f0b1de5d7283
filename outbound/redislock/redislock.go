package redislock

import (
	"context"
	"log/slog"
	"ticket-rush/common/errs"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseLua deletes the key only when the caller still owns it, so a lock
// whose lease expired mid-operation cannot delete a successor's lock.
const releaseLua = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// holdLua lowers the key TTL only when the caller still owns it.
const holdLua = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("pexpire", KEYS[1], ARGV[2]) else return 0 end`

// Locker is a redis-backed distributed lock with bounded wait and automatic
// lease expiry. It favors fast-fail over queuing: once wait is exhausted the
// caller gets errs.ErrLockAcquisitionFailed and should surface a retry.
type Locker struct {
	Client       *redis.Client
	PollInterval time.Duration
}

func (l *Locker) TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (string, error) {
	token := ulid.Make().String()
	deadline := time.Now().Add(wait)

	poll := l.PollInterval
	if poll <= 0 {
		poll = 20 * time.Millisecond
	}

	for {
		ok, err := l.Client.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return "", err
		}

		if ok {
			return token, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", errs.ErrLockAcquisitionFailed
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(min(poll, remaining)):
		}
	}
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	return l.Client.Eval(ctx, releaseLua, []string{key}, token).Err()
}

// TickLock guards scheduled batch jobs so only one instance executes a given
// job per tick window. MinHold prevents immediate re-trigger by a
// fast-restarting competitor; MaxHold guarantees release even if the runner
// crashes mid-job.
type TickLock struct {
	Client  *redis.Client
	MinHold time.Duration
	MaxHold time.Duration
}

// TryHold attempts to claim the tick for key. A false result is not an
// error: another instance owns the window and the caller must skip silently.
// The returned release func keeps the claim alive until MinHold has elapsed.
func (l *TickLock) TryHold(ctx context.Context, key string) (func(context.Context), bool, error) {
	token := ulid.Make().String()

	ok, err := l.Client.SetNX(ctx, key, token, l.MaxHold).Result()
	if err != nil {
		return nil, false, err
	}

	if !ok {
		return nil, false, nil
	}

	start := time.Now()
	release := func(ctx context.Context) {
		var err error
		if remaining := l.MinHold - time.Since(start); remaining > 0 {
			err = l.Client.Eval(ctx, holdLua, []string{key}, token, remaining.Milliseconds()).Err()
		} else {
			err = l.Client.Eval(ctx, releaseLua, []string{key}, token).Err()
		}

		if err != nil {
			slog.ErrorContext(ctx, "failed to release tick lock", slog.String("key", key), slog.Any("error", err))
		}
	}

	return release, true, nil
}
