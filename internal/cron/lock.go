package cron

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/boutique-backend/pkg/redis"
)

const (
	lockScope       = "cron"
	defaultLockTTL  = 10 * time.Minute
	defaultLockName = "scheduler"
)

// Lock coordinates exclusive cron runs across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// NewSchedulerLock builds the Redis lock that keeps a single replica running
// a cycle at a time. The TTL must outlive the longest cycle.
func NewSchedulerLock(store redis.LockStore, name string, ttl time.Duration) (Lock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if name == "" {
		name = defaultLockName
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	lock, err := redis.NewLock(store, store.LockKey(lockScope, name), ttl)
	if err != nil {
		return nil, err
	}
	return lock, nil
}
