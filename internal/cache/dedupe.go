package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper is a best-effort fast path for suppressing duplicate webhook
// deliveries before they reach the database. It is advisory only: the
// ledger's unique constraint remains the correctness mechanism, so a cache
// miss on a duplicate is harmless and a hit is re-checked against the
// ledger before short-circuiting.
type Deduper interface {
	Hit(ctx context.Context, key string) bool
	Mark(ctx context.Context, key string)
}

type redisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(addr string, ttl time.Duration) Deduper {
	return &redisDeduper{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

func (d *redisDeduper) Hit(ctx context.Context, key string) bool {
	n, err := d.rdb.Exists(ctx, "dedupe:"+key).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (d *redisDeduper) Mark(ctx context.Context, key string) {
	// Errors are ignored: losing a mark only costs one extra DB round trip.
	d.rdb.Set(ctx, "dedupe:"+key, "1", d.ttl)
}

type memoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

// NewMemoryDeduper is the in-process variant used when redis is not
// configured, and in tests.
func NewMemoryDeduper(ttl time.Duration) Deduper {
	return &memoryDeduper{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

func (d *memoryDeduper) Hit(ctx context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	at, ok := d.seen[key]
	if !ok {
		return false
	}
	if time.Since(at) > d.ttl {
		delete(d.seen, key)
		return false
	}
	return true
}

func (d *memoryDeduper) Mark(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[key] = time.Now()
}
