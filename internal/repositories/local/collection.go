package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gizaedu/exam-service/internal/kvstore"
)

// collection keeps a whole entity list as one JSON array under a single key.
// Every write is a read-modify-write of the full list, serialized by mu.
// A collection bound to a batch stages its writes there instead.
type collection[T any] struct {
	kv    *kvstore.Helper
	batch *kvstore.Batch
	key   string
	mu    *sync.Mutex
}

func newCollection[T any](kv *kvstore.Helper, key string) *collection[T] {
	return &collection[T]{kv: kv, key: key, mu: &sync.Mutex{}}
}

// inBatch returns a view of the collection that writes into b
func (c *collection[T]) inBatch(b *kvstore.Batch) *collection[T] {
	return &collection[T]{kv: c.kv, batch: b, key: c.key, mu: c.mu}
}

func (c *collection[T]) get(ctx context.Context, dest interface{}) error {
	if c.batch != nil {
		return c.batch.Get(ctx, c.key, dest)
	}
	return c.kv.Get(ctx, c.key, dest)
}

// load returns the stored list, or an empty list when the key was never written
func (c *collection[T]) load(ctx context.Context) ([]*T, error) {
	var items []*T
	if err := c.get(ctx, &items); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []*T{}, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", c.key, err)
	}

	out := make([]*T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *collection[T]) store(ctx context.Context, items []*T) error {
	if items == nil {
		items = []*T{}
	}
	if c.batch != nil {
		if err := c.batch.Set(c.key, items); err != nil {
			return fmt.Errorf("failed to stage %s: %w", c.key, err)
		}
		return nil
	}
	if err := c.kv.Set(ctx, c.key, items, 0); err != nil {
		return fmt.Errorf("failed to store %s: %w", c.key, err)
	}
	return nil
}

func (c *collection[T]) replace(ctx context.Context, items []*T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, items)
}

// mutate loads the list, lets fn rewrite it and stores the result.
// Returning a nil slice from fn skips the write.
func (c *collection[T]) mutate(ctx context.Context, fn func(items []*T) ([]*T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	updated, err := fn(items)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	return c.store(ctx, updated)
}

func indexOf[T any](items []*T, match func(*T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}
