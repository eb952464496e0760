package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	key := "italiano:test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []byte(`{"verbs":[]}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(data) != `{"verbs":[]}` {
		t.Fatalf("unexpected get: %q ok=%v err=%v", data, ok, err)
	}
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://not-redis"); err == nil {
		t.Fatalf("expected error for non-redis url")
	}
}
