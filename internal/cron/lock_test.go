package cron

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type memoryLockStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryLockStore) LockKey(scope, id string) string { return "test:lock:" + scope + ":" + id }

func TestSchedulerLockIsExclusive(t *testing.T) {
	store := newMemoryLockStore()
	ctx := context.Background()

	first, err := NewSchedulerLock(store, "", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewSchedulerLock(store, "", 0)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ttl := store.ttls["test:lock:cron:scheduler"]; ttl != defaultLockTTL {
		t.Fatalf("unexpected ttl %s", ttl)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("second replica must not acquire a held lock")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("non-owner release: %v", err)
	}
	if _, held := store.values["test:lock:cron:scheduler"]; !held {
		t.Fatalf("non-owner release must not free the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatalf("lock must be free after owner release")
	}
}

func TestSchedulerLockRequiresStore(t *testing.T) {
	if _, err := NewSchedulerLock(nil, "x", time.Minute); err == nil {
		t.Fatalf("expected error")
	}
}
