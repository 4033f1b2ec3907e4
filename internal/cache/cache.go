package cache

import (
	"context"
	"errors"
	"time"

	"todo_webapp/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
)

// ErrMiss means the key is absent or expired; ErrUnavailable means the cache
// backend itself cannot be reached. Callers fall back to the primary store
// in both cases, but only a miss should be followed by a repopulate attempt.
var (
	ErrMiss        = errors.New("cache miss")
	ErrUnavailable = errors.New("cache unavailable")
)

const todoListKey = "todos:all"

var (
	Hits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "todo_cache_hits_total",
		Help: "List reads served from the cache",
	})
	Misses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "todo_cache_misses_total",
		Help: "List reads that fell through to the database",
	})
	Errors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "todo_cache_errors_total",
		Help: "Cache operations that failed against the backend",
	})
)

func init() {
	prometheus.MustRegister(Hits)
	prometheus.MustRegister(Misses)
	prometheus.MustRegister(Errors)
}

// Connect creates the shared Redis client. Returns nil when addr is empty or
// the backend does not answer a ping; a nil client keeps the server running
// with caching disabled.
func Connect(addr, password string, db int) *redis.Client {
	if addr == "" {
		logger.Info("cache disabled: REDIS_ADDR not set")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("cache unreachable, continuing without it", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("cache connected", "addr", addr)
	return client
}

// ListCache holds the serialized full todo list under a single key.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// Get returns the cached payload, ErrMiss when the key is absent, or
// ErrUnavailable when the backend cannot serve the read.
func (c *ListCache) Get(ctx context.Context) ([]byte, error) {
	if c.client == nil {
		return nil, ErrUnavailable
	}
	payload, err := c.client.Get(ctx, todoListKey).Bytes()
	if err == redis.Nil {
		Misses.Inc()
		return nil, ErrMiss
	}
	if err != nil {
		Errors.Inc()
		return nil, ErrUnavailable
	}
	Hits.Inc()
	return payload, nil
}

// Set stores the payload with the configured TTL. Best-effort: a backend
// failure is returned as-is so the caller can log it, ErrUnavailable means
// caching is disabled.
func (c *ListCache) Set(ctx context.Context, payload []byte) error {
	if c.client == nil {
		return ErrUnavailable
	}
	if err := c.client.Set(ctx, todoListKey, payload, c.ttl).Err(); err != nil {
		Errors.Inc()
		return err
	}
	return nil
}

// Invalidate deletes the key so the next list read recomputes from the
// database.
func (c *ListCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return ErrUnavailable
	}
	if err := c.client.Del(ctx, todoListKey).Err(); err != nil {
		Errors.Inc()
		return err
	}
	return nil
}
