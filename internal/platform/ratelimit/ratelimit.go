// Package ratelimit throttles anonymous form submissions with fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy is the number of events allowed per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Limiter decides whether one more event is allowed for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config selects the limiter backend and policy.
type Config struct {
	RedisAddr     string        `env:"BONITA_FORWARD_REDIS_ADDR"`
	RedisPassword string        `env:"BONITA_FORWARD_REDIS_PASSWORD"`
	RedisDB       int           `env:"BONITA_FORWARD_REDIS_DB" envDefault:"0"`
	Limit         int           `env:"BONITA_FORWARD_RATE_LIMIT" envDefault:"10"`
	Window        time.Duration `env:"BONITA_FORWARD_RATE_WINDOW" envDefault:"1m"`
}

// Policy returns the configured policy.
func (c Config) Policy() Policy {
	return Policy{Limit: c.Limit, Window: c.Window}
}

// New returns a Redis limiter when an address is configured, otherwise an in-memory one.
// The returned close function releases the backend.
func New(cfg Config) (Limiter, func() error) {
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(client, "bf:ratelimit", cfg.Policy()), client.Close
	}
	return NewMemory(cfg.Policy()), func() error { return nil }
}

// Memory is a process-local fixed window limiter.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]memoryWindow
	lastSweep time.Time
}

type memoryWindow struct {
	start time.Time
	count int
}

// NewMemory builds an in-memory limiter.
func NewMemory(policy Policy) *Memory {
	return &Memory{policy: normalize(policy), now: time.Now, windows: make(map[string]memoryWindow)}
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	window, ok := m.windows[key]
	if !ok || now.Sub(window.start) >= m.policy.Window {
		window = memoryWindow{start: now}
		if now.Sub(m.lastSweep) >= m.policy.Window {
			m.sweep(now)
		}
	}
	if window.count >= m.policy.Limit {
		m.windows[key] = window
		return false, nil
	}
	window.count++
	m.windows[key] = window
	return true, nil
}

// sweep drops expired windows, at most once per window; callers hold mu.
func (m *Memory) sweep(now time.Time) {
	m.lastSweep = now
	for key, window := range m.windows {
		if now.Sub(window.start) >= m.policy.Window {
			delete(m.windows, key)
		}
	}
}

// Redis is a fixed window limiter shared across processes through Redis.
type Redis struct {
	client redis.Cmdable
	prefix string
	policy Policy
	now    func() time.Time
}

// NewRedis builds a Redis-backed limiter. Keys are namespaced by prefix.
func NewRedis(client redis.Cmdable, prefix string, policy Policy) *Redis {
	return &Redis{client: client, prefix: prefix, policy: normalize(policy), now: time.Now}
}

// Allow implements Limiter with INCR and EXPIRE in one transaction.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	bucket := r.now().UnixNano() / int64(r.policy.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", r.prefix, key, bucket)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, r.policy.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(r.policy.Limit), nil
}

func normalize(policy Policy) Policy {
	if policy.Limit <= 0 {
		policy.Limit = 10
	}
	if policy.Window <= 0 {
		policy.Window = time.Minute
	}
	return policy
}
