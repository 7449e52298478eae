package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KDL-umass/Toybox/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when the lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire distributed lock")

// unlockScript deletes the lock only if this holder still owns it.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.DistributedLocker using Redis.
// It keeps one engine handle single-owner across processes.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
}

// Lock acquires the lock for key using SET NX PX, polling until ctx is done.
// The returned UnlockFunc releases it only if this caller still holds it.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	acquire := func() (bool, error) {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return false, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		return ok, nil
	}

	unlock := func(ctx context.Context) error {
		return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
	}

	if ok, err := acquire(); err != nil || ok {
		if err != nil {
			return nil, err
		}
		return unlock, nil
	}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockAcquire, key, ctx.Err())
		case <-ticker.C:
			ok, err := acquire()
			if err != nil {
				return nil, err
			}
			if ok {
				return unlock, nil
			}
		}
	}
}
