package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis starts an in-memory redis server torn down with the test. Used by
// the queue, scheduler and leader-election tests in place of a real server.
func Redis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	return miniredis.RunT(t)
}

// RedisOptions builds go-redis client options pointing at a test server.
func RedisOptions(mr *miniredis.Miniredis) *redis.Options {
	return &redis.Options{Addr: mr.Addr()}
}

// RedisClient starts an in-memory redis server plus a connected client,
// both torn down with the test.
func RedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := Redis(t)
	client := redis.NewClient(RedisOptions(mr))

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}
	})

	return mr, client
}
