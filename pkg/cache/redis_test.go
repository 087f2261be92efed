package cache

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-assistant/pkg/config"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "grading:", Key())
	assert.Equal(t, "grading:state:autosave", Key("state", "autosave"))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), Key("ping"), "1", 0).Err())
	assert.True(t, mr.Exists("grading:ping"))
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	host := mr.Host()
	mr.Close()

	_, err = NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
