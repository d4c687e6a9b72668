package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// LayeredCache implements a multi-layer cache (memory in front of a durable store)
type LayeredCache struct {
	memory    Cache
	durable   Cache
	memoryTTL time.Duration
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memory, durable Cache, memoryTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory:    memory,
		durable:   durable,
		memoryTTL: memoryTTL,
	}
}

// Get checks memory first, then the durable layer
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := c.memory.Get(ctx, key); err == nil {
		return val, nil
	}

	val, err := c.durable.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Promote to memory
	_ = c.memory.Set(ctx, key, val, c.memoryTTL)
	return val, nil
}

// Set stores a value in both layers. The memory copy never outlives the entry.
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	memTTL := c.memoryTTL
	if ttl > 0 && (memTTL == 0 || ttl < memTTL) {
		memTTL = ttl
	}
	if err := c.memory.Set(ctx, key, value, memTTL); err != nil {
		return err
	}
	return c.durable.Set(ctx, key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.memory.Delete(ctx, key), c.durable.Delete(ctx, key))
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear(ctx context.Context) error {
	return errors.Join(c.memory.Clear(ctx), c.durable.Clear(ctx))
}

// Close releases the durable layer's connections, if it holds any
func (c *LayeredCache) Close() error {
	if closer, ok := c.durable.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
