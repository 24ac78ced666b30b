package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Batch stages writes and applies them together in one MULTI/EXEC.
// Reads through the batch see its staged values.
type Batch struct {
	h      *Helper
	mu     sync.Mutex
	staged map[string][]byte
	order  []string
}

func (h *Helper) NewBatch() *Batch {
	return &Batch{h: h, staged: make(map[string][]byte)}
}

// Get reads the staged value of key, falling back to the store
func (b *Batch) Get(ctx context.Context, key string, dest interface{}) error {
	b.mu.Lock()
	data, ok := b.staged[key]
	b.mu.Unlock()
	if !ok {
		return b.h.Get(ctx, key, dest)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("kvstore unmarshal error for key %s: %w", key, err)
	}
	return nil
}

// Set stages value under key without a TTL
func (b *Batch) Set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore marshal error for key %s: %w", key, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.staged[key]; !ok {
		b.order = append(b.order, key)
	}
	b.staged[key] = data
	return nil
}

// Commit writes every staged value atomically
func (b *Batch) Commit(ctx context.Context) error {
	if b.h.client == nil {
		return ErrNotAvailable
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.order) == 0 {
		return nil
	}

	_, err := b.h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range b.order {
			pipe.Set(ctx, b.h.Key(key), b.staged[key], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kvstore commit error: %w", err)
	}
	return nil
}
