package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newTestRedis connects to TREEFLOW_REDIS_URL or skips.
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("TREEFLOW_REDIS_URL")
	if url == "" {
		t.Skip("TREEFLOW_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	key := "treeflow-test:" + uuid.NewString()

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get on fresh key = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("expected parse error")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"miss", redis.Nil, false},
		{"command", errors.New("WRONGTYPE"), false},
		{"network", timeoutErr{}, true},
		{"closed", redis.ErrClosed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if IsRetryable(got) != tt.retryable {
				t.Errorf("classify(%v) retryable = %v, want %v", tt.err, IsRetryable(got), tt.retryable)
			}
			if tt.retryable && !errors.Is(got, ErrNetwork) {
				t.Errorf("classify(%v) = %v, want ErrNetwork", tt.err, got)
			}
		})
	}
}
