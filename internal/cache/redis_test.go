package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis tests need a running server. Set REDIS_ADDRESS (e.g. "localhost:6379") to
// enable them; they use DB 15 and flush it first.

func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}
	return addr
}

func flushTestRedisDB(t *testing.T, addr string) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}
}

func newTestRedisCache(t *testing.T, ttl time.Duration, group string) Cache {
	t.Helper()
	addr := skipIfNoRedis(t)
	flushTestRedisDB(t, addr)
	c, err := New(ProviderRedis, ProviderConfig{
		TTL:          ttl,
		RedisAddress: addr,
		RedisDB:      15,
		Group:        group,
	})
	if err != nil {
		t.Fatalf("New redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	c := newTestRedisCache(t, 10*time.Second, "")

	if val, ok := c.Get(thumbA); ok || val != nil {
		t.Fatalf("Expected miss, got %v %v", val, ok)
	}

	c.Set(thumbA, []byte("jpeg"))
	val, ok := c.Get(thumbA)
	if !ok || string(val) != "jpeg" {
		t.Fatalf("Expected hit with 'jpeg', got %q %v", val, ok)
	}
}

func TestRedisCache_ContainsAndLen(t *testing.T) {
	c := newTestRedisCache(t, 10*time.Second, "")

	if c.Contains(thumbA) || c.Len() != 0 {
		t.Fatal("Expected empty cache on a clean DB")
	}

	c.Set(thumbA, []byte("1"))
	c.Set("https://images.pluto.tv/series/2/tile.jpg", []byte("2"))

	if !c.Contains(thumbA) {
		t.Error("Expected key to be contained")
	}
	if c.Len() != 2 {
		t.Errorf("Expected Len 2, got %d", c.Len())
	}
}

func TestRedisCache_KeysArePrefixed(t *testing.T) {
	addr := skipIfNoRedis(t)
	c := newTestRedisCache(t, 10*time.Second, "thumbnails")
	c.Set(thumbA, []byte("1"))

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := client.Exists(ctx, "plutodl:thumbnails:"+thumbA).Result()
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if n != 1 {
		t.Error("Expected value under the group prefix")
	}

	ttl, err := client.PTTL(ctx, "plutodl:thumbnails:"+thumbA).Result()
	if err != nil {
		t.Fatalf("PTTL: %v", err)
	}
	if ttl <= 0 || ttl > 10*time.Second {
		t.Errorf("Expected TTL within 10s, got %v", ttl)
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	c := newTestRedisCache(t, 100*time.Millisecond, "")

	c.Set(thumbA, []byte("1"))
	time.Sleep(300 * time.Millisecond)

	if c.Contains(thumbA) {
		t.Error("Expected entry to expire on the server")
	}
}
