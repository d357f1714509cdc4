package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryDeduper tracks callback deliveries that were fully processed.
type DeliveryDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string) error
}

type redisDeliveryDeduper struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func (d *redisDeliveryDeduper) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+":"+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *redisDeliveryDeduper) Remember(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.prefix+":"+key, "1", d.ttl).Err()
}

type memoryDeliveryDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryDeliveryDeduper(ttl time.Duration) *memoryDeliveryDeduper {
	return &memoryDeliveryDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: time.Now().Add(ttl),
	}
}

func (d *memoryDeliveryDeduper) Seen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.seen[key]
	return ok && exp.After(time.Now()), nil
}

func (d *memoryDeliveryDeduper) Remember(_ context.Context, key string) error {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}
	return nil
}

// NewDeliveryDeduper builds a Redis deduper and falls back to in-memory when
// no client is given or Redis does not answer.
func NewDeliveryDeduper(client redis.UniversalClient, ttl time.Duration) (DeliveryDeduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if client == nil {
		return newMemoryDeliveryDeduper(ttl), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryDeliveryDeduper(ttl), err
	}

	return &redisDeliveryDeduper{
		client: client,
		prefix: "callback:delivery",
		ttl:    ttl,
	}, nil
}
