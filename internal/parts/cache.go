package parts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/logging"
)

var ErrPartNotFound = errors.New("parts: part not found")

// Resolver resolves a part key to its codeword buffer.
type Resolver interface {
	Resolve(ctx context.Context, k Key) (*codec.Buffer, error)
}

// Cache is a concurrency-safe part cache. Loaded buffers are shared between
// renders and must not be modified.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*codec.Buffer
	index *Index
}

// NewCache creates a new part cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*codec.Buffer),
		index: index,
	}
}

// Resolve loads and caches a part by key.
func (c *Cache) Resolve(ctx context.Context, k Key) (*codec.Buffer, error) {
	path, ok := c.index.ResolvePath(k)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, k)
	}

	// Fast path: read lock
	c.mu.RLock()
	if buf, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Slow path: load from disk
	buf, err := LoadMap(path)
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	if existing, exists := c.items[path]; exists {
		c.mu.Unlock()
		return existing, nil
	}
	c.items[path] = buf
	c.mu.Unlock()

	logging.L().Debug("part loaded", "key", k.String(), "path", path,
		"width", buf.Width, "height", buf.Height, "coverage", buf.Coverage())
	return buf, nil
}

// Len returns the number of buffers held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
