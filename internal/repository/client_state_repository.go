package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/grading-assistant/pkg/cache"
	"github.com/noah-isme/grading-assistant/pkg/storage"
)

// ErrStateNotFound signals that a client state key has never been written.
var ErrStateNotFound = errors.New("client state not found")

// RedisClientStateRepository keeps client state blobs in Redis without expiry.
type RedisClientStateRepository struct {
	client *redis.Client
}

// NewRedisClientStateRepository constructs the Redis backend.
func NewRedisClientStateRepository(client *redis.Client) *RedisClientStateRepository {
	return &RedisClientStateRepository{client: client}
}

func stateKey(key string) string {
	return cache.Key("state", key)
}

// Get returns the raw blob stored under key.
func (r *RedisClientStateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, stateKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("redis get state %s: %w", key, err)
	}
	return raw, nil
}

// Put replaces the blob stored under key.
func (r *RedisClientStateRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, stateKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set state %s: %w", key, err)
	}
	return nil
}

// FileClientStateRepository keeps client state blobs as files under state/.
type FileClientStateRepository struct {
	store *storage.LocalStorage
}

// NewFileClientStateRepository constructs the file backend.
func NewFileClientStateRepository(store *storage.LocalStorage) *FileClientStateRepository {
	return &FileClientStateRepository{store: store}
}

func stateFile(key string) string {
	return "state/" + key + ".json"
}

// Get returns the raw blob stored under key.
func (r *FileClientStateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.store.Read(stateFile(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("read state %s: %w", key, err)
	}
	return raw, nil
}

// Put replaces the blob stored under key.
func (r *FileClientStateRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.store.Write(stateFile(key), value); err != nil {
		return fmt.Errorf("write state %s: %w", key, err)
	}
	return nil
}
