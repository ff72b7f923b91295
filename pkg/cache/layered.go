package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache combines an in-process L1 with Redis as L2. Writes go to
// both layers; reads fill L1 on an L2 hit. Redis being down degrades to
// memory-only operation rather than failing the request.
type LayeredCache struct {
	l1 *MemoryCache
	l2 *RedisCache
}

// NewLayeredCache creates a two-level cache over an existing Redis client.
func NewLayeredCache(l2 *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		l1: NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		l2: l2,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := lc.l1.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	return lc.l2.Set(ctx, key, value, expiration)
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.l1.Get(ctx, key); err == nil {
		return b, nil
	}

	b, err := lc.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// TTL is not recoverable from L2; refill with a short grace window.
	_ = lc.l1.Set(ctx, key, b, time.Minute)
	return b, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	err1 := lc.l1.Delete(ctx, keys...)
	err2 := lc.l2.Delete(ctx, keys...)
	return errors.Join(err1, err2)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	err1 := lc.l1.DeleteByPattern(ctx, pattern)
	err2 := lc.l2.DeleteByPattern(ctx, pattern)
	return errors.Join(err1, err2)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, err := lc.l1.Exists(ctx, keys...); err == nil && ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	err1 := lc.l1.Close()
	err2 := lc.l2.Close()
	return errors.Join(err1, err2)
}
