package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis for testing and skips when none
// is running. The integration build runs the same contract against a
// container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	store := NewRedisStore(client, "")
	if store.redis != client {
		t.Error("RedisStore redis client not set correctly")
	}
	if store.prefix != DefaultRedisPrefix {
		t.Errorf("prefix = %q, want %q", store.prefix, DefaultRedisPrefix)
	}
	if got := store.redisKey(AllEmployeesKey()); got != "employee-api:employees:all" {
		t.Errorf("redisKey() = %q", got)
	}
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, "")
}

func TestRedisStore_Contract(t *testing.T) {
	testStoreContract(t, NewRedisStore(setupTestRedis(t), "test:"))
}

func TestMemoryStore_Contract(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

// testStoreContract checks the behaviour every Store must share.
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	all := AllEmployeesKey()
	one := EmployeeKey(uuid.New())

	if _, err := store.Get(ctx, all); err != ErrCacheMiss {
		t.Fatalf("empty store: expected ErrCacheMiss, got %v", err)
	}

	for _, key := range []CacheKey{all, one} {
		if err := store.Set(ctx, key, NewEntry([]byte(key.String()), 0)); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	got, err := store.Get(ctx, one)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Data) != one.String() {
		t.Errorf("Data = %s, want %s", got.Data, one.String())
	}

	if err := store.Delete(ctx, all); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, all); err != ErrCacheMiss {
		t.Errorf("after Delete: expected ErrCacheMiss, got %v", err)
	}
	if _, err := store.Get(ctx, one); err != nil {
		t.Errorf("per-id entry should survive list eviction: %v", err)
	}

	expired := &CacheEntry{Data: []byte("old"), CachedAt: time.Now(), Expires: time.Now().Add(-time.Second)}
	if err := store.Set(ctx, all, expired); err != nil {
		t.Fatalf("Set expired failed: %v", err)
	}
	if _, err := store.Get(ctx, all); err != ErrCacheMiss {
		t.Errorf("expired entry: expected ErrCacheMiss, got %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Get(ctx, one); err != ErrCacheMiss {
		t.Errorf("after Clear: expected ErrCacheMiss, got %v", err)
	}
}
