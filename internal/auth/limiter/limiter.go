// Package limiter caps how often a single account or enrollment key may try
// a guessable secret (OTP codes, voice phrases).
package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var (
	ErrLimited     = errors.New("limiter: too many attempts")
	ErrUnavailable = errors.New("limiter: unavailable")
)

// Limiter records one attempt against key and reports ErrLimited once the
// budget is spent.
type Limiter interface {
	Allow(ctx context.Context, key string) error
}

// Config is shared by both implementations.
type Config struct {
	Prefix      string
	MaxAttempts int
	Window      time.Duration
}

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = "voxauth:attempts:"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	return c
}

// RedisLimiter is a fixed-window counter shared across instances.
type RedisLimiter struct {
	redis redis.UniversalClient
	cfg   Config
}

func NewRedisLimiter(client redis.UniversalClient, cfg Config) *RedisLimiter {
	return &RedisLimiter{redis: client, cfg: cfg.withDefaults()}
}

// Allow counts the attempt and arms the window expiry in one transaction.
// EXPIRE NX runs on every hit, so a counter left without a TTL heals on the
// next attempt instead of locking the key out for good. Needs Redis 7.
func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	k := l.cfg.Prefix + key

	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.ExpireNX(ctx, k, l.cfg.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if incr.Val() > int64(l.cfg.MaxAttempts) {
		return ErrLimited
	}
	return nil
}

// MemoryLimiter keeps a token bucket per key in process. Buckets refill at
// MaxAttempts per Window.
type MemoryLimiter struct {
	cfg Config
	Now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg.withDefaults(),
		Now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	now := l.Now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.cfg.Window / time.Duration(l.cfg.MaxAttempts))
		b = &bucket{lim: rate.NewLimiter(every, l.cfg.MaxAttempts)}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()

	if !b.lim.AllowN(now, 1) {
		return ErrLimited
	}
	return nil
}

// Prune drops buckets idle for longer than a window. Returns how many went.
func (l *MemoryLimiter) Prune() int {
	cutoff := l.Now().Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Nop never limits.
type Nop struct{}

func (Nop) Allow(context.Context, string) error { return nil }
