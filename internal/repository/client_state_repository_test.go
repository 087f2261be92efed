package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stateBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

func TestClientStateBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, _ := newTestStorage(t)

	backends := map[string]stateBackend{
		"redis": NewRedisClientStateRepository(client),
		"file":  NewFileClientStateRepository(store),
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := backend.Get(ctx, "dark-mode")
			assert.ErrorIs(t, err, ErrStateNotFound)

			require.NoError(t, backend.Put(ctx, "dark-mode", []byte("true")))
			raw, err := backend.Get(ctx, "dark-mode")
			require.NoError(t, err)
			assert.Equal(t, "true", string(raw))
		})
	}

	assert.True(t, mr.Exists("grading:state:dark-mode"))
}
