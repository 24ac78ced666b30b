package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound     = errors.New("kvstore: key not found")
	ErrNotAvailable = errors.New("kvstore: store not available")
)

// Helper stores JSON documents under namespaced Redis keys.
type Helper struct {
	client *redis.Client
	prefix string
}

// NewHelper creates a helper whose keys are "<prefix>_<key>".
func NewHelper(client *redis.Client, prefix string) *Helper {
	return &Helper{
		client: client,
		prefix: prefix,
	}
}

// Key returns the full Redis key for key.
func (h *Helper) Key(key string) string {
	if h.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", h.prefix, key)
}

// Get retrieves and unmarshals the document stored under key
func (h *Helper) Get(ctx context.Context, key string, dest interface{}) error {
	if h.client == nil {
		return ErrNotAvailable
	}

	data, err := h.client.Get(ctx, h.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("kvstore get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("kvstore unmarshal error for key %s: %w", key, err)
	}

	return nil
}

// Set marshals value and stores it under key. A zero ttl keeps the key forever.
func (h *Helper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if h.client == nil {
		return ErrNotAvailable
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore marshal error for key %s: %w", key, err)
	}

	if err := h.client.Set(ctx, h.Key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("kvstore set error: %w", err)
	}
	return nil
}

// Delete removes keys, using a pipeline for more than one key
func (h *Helper) Delete(ctx context.Context, keys ...string) error {
	if h.client == nil {
		return ErrNotAvailable
	}
	if len(keys) == 0 {
		return nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = h.Key(key)
	}

	if len(fullKeys) > 1 {
		pipe := h.client.Pipeline()
		pipe.Del(ctx, fullKeys...)
		_, err := pipe.Exec(ctx)
		return err
	}

	return h.client.Del(ctx, fullKeys...).Err()
}

// Exists checks if a key is present
func (h *Helper) Exists(ctx context.Context, key string) (bool, error) {
	if h.client == nil {
		return false, ErrNotAvailable
	}

	count, err := h.client.Exists(ctx, h.Key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("kvstore exists error: %w", err)
	}

	return count > 0, nil
}

// Keys lists the keys (without prefix) matching pattern using SCAN
func (h *Helper) Keys(ctx context.Context, pattern string) ([]string, error) {
	if h.client == nil {
		return nil, ErrNotAvailable
	}

	fullPattern := h.Key(pattern)
	trim := len(h.Key(""))

	var (
		cursor uint64
		keys   []string
	)
	for {
		scanKeys, next, err := h.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("kvstore scan error: %w", err)
		}
		for _, k := range scanKeys {
			keys = append(keys, k[trim:])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// Ping checks the connection
func (h *Helper) Ping(ctx context.Context) error {
	if h.client == nil {
		return ErrNotAvailable
	}
	return h.client.Ping(ctx).Err()
}
