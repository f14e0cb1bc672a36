package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Ping(ctx context.Context) *redislib.StatusCmd {
	cmd := redislib.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redislib.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = toString(value)
	cmd := redislib.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeStore) Get(ctx context.Context, key string) *redislib.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redislib.NewStringCmd(ctx)
	if val, ok := f.values[key]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redislib.Nil)
	}
	return cmd
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redislib.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redislib.NewBoolCmd(ctx)
	if _, exists := f.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = toString(value)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	cmd := redislib.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func TestAcquireLockConflictsWhileHeld(t *testing.T) {
	t.Parallel()

	client := NewFromCmdable(newFakeStore())
	ctx := context.Background()

	lock, err := client.AcquireLock(ctx, "cart", "profile-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.AcquireLock(ctx, "cart", "profile-1", time.Minute)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if _, err := client.AcquireLock(ctx, "cart", "profile-1", time.Minute); err != nil {
		t.Fatalf("expected reacquire after release, got %v", err)
	}
}

func TestLocksAreScopedPerProfile(t *testing.T) {
	t.Parallel()

	client := NewFromCmdable(newFakeStore())
	ctx := context.Background()

	if _, err := client.AcquireLock(ctx, "cart", "profile-1", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.AcquireLock(ctx, "cart", "profile-2", time.Minute); err != nil {
		t.Fatalf("locks must not collide across profiles: %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	client := NewFromCmdable(newFakeStore())
	ctx := context.Background()

	lock, err := client.AcquireLock(ctx, "cart", "profile-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}
}
