package callback

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerifiedCache remembers transaction references whose payment already
// verified, across process instances. A hit lets a repeated redirect skip
// the gateway RPC and go straight to the (duplicate-tolerant) recording
// step. Purely an optimization: the donations table's unique constraint is
// the source of truth.
type VerifiedCache interface {
	Seen(ctx context.Context, transactionRef string) (bool, error)
	Mark(ctx context.Context, transactionRef string) error
}

type redisVerifiedCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (c *redisVerifiedCache) Seen(ctx context.Context, transactionRef string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+":"+transactionRef).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisVerifiedCache) Mark(ctx context.Context, transactionRef string) error {
	return c.client.Set(ctx, c.prefix+":"+transactionRef, "1", c.ttl).Err()
}

type memoryVerifiedCache struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryVerifiedCache(ttl time.Duration) *memoryVerifiedCache {
	now := time.Now()
	return &memoryVerifiedCache{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (c *memoryVerifiedCache) Seen(_ context.Context, transactionRef string) (bool, error) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.seen[transactionRef]
	return ok && exp.After(now), nil
}

func (c *memoryVerifiedCache) Mark(_ context.Context, transactionRef string) error {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[transactionRef] = now.Add(c.ttl)
	if now.After(c.nextGC) {
		for ref, exp := range c.seen {
			if exp.Before(now) {
				delete(c.seen, ref)
			}
		}
		c.nextGC = now.Add(c.ttl)
	}
	return nil
}

// NewVerifiedCache builds a Redis-backed cache and falls back to in-memory
// when Redis is unreachable.
func NewVerifiedCache(addr, pass string, db int, ttl time.Duration) (VerifiedCache, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return newMemoryVerifiedCache(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryVerifiedCache(ttl), err
	}

	return &redisVerifiedCache{
		client: client,
		prefix: "pay:verified",
		ttl:    ttl,
	}, nil
}
