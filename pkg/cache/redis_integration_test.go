//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/employee-api/internal/testutil"
	"github.com/Sternrassler/employee-api/pkg/client"
)

// setupRedisContainer starts a Redis container for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

func TestRedisStore_Integration_Contract(t *testing.T) {
	testStoreContract(t, NewRedisStore(setupRedisContainer(t), ""))
}

func TestRedisStore_Integration_TTL(t *testing.T) {
	rdb := setupRedisContainer(t)
	store := NewRedisStore(rdb, "")
	ctx := context.Background()
	key := EmployeeKey(uuid.New())

	if err := store.Set(ctx, key, NewEntry([]byte("x"), time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	ttl, err := rdb.TTL(ctx, store.redisKey(key)).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("redis TTL = %v, want (0, 1m]", ttl)
	}

	if err := store.Set(ctx, AllEmployeesKey(), NewEntry([]byte("x"), 0)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	ttl, err = rdb.TTL(ctx, store.redisKey(AllEmployeesKey())).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != -1 {
		t.Errorf("redis TTL = %v, want -1 (no expiry)", ttl)
	}
}

func TestEmployeeCache_Integration_RedisFlow(t *testing.T) {
	rdb := setupRedisContainer(t)

	john := testutil.NewRecord("John Doe", 75000, 30, "Software Engineer")
	mock := testutil.NewMockEmployeeServer(john)
	defer mock.Close()

	upstream, err := client.New(client.DefaultConfig(mock.URL()))
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	defer upstream.Close()

	employees := NewEmployeeCache(upstream, NewRedisStore(rdb, ""), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := employees.GetAll(ctx); err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
	}
	if n := mock.Count(testutil.KindFetchAll); n != 1 {
		t.Errorf("fetch_all calls = %d, want 1", n)
	}

	if _, err := employees.RemoveAndInvalidate(ctx, john.ID); err != nil {
		t.Fatalf("RemoveAndInvalidate() error = %v", err)
	}

	all, err := employees.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("GetAll() after delete = %+v, want empty", all)
	}
	if n := mock.Count(testutil.KindFetchAll); n != 2 {
		t.Errorf("fetch_all calls = %d, want 2", n)
	}
}
