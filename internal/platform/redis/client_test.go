package redis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/platform/config"
)

func TestNew_NoURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "://nope"}, nil)
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestFailureHook(t *testing.T) {
	var buf bytes.Buffer
	hook := failureHook{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	cmd := redis.NewStatusCmd(context.Background(), "set", "k", "v")

	t.Run("missing key is not logged", func(t *testing.T) {
		buf.Reset()
		err := hook.ProcessHook(func(context.Context, redis.Cmder) error { return redis.Nil })(context.Background(), cmd)
		assert.ErrorIs(t, err, redis.Nil)
		assert.Empty(t, buf.String())
	})

	t.Run("transport failure is logged with the command", func(t *testing.T) {
		buf.Reset()
		boom := errors.New("connection reset")
		err := hook.ProcessHook(func(context.Context, redis.Cmder) error { return boom })(context.Background(), cmd)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, buf.String(), "redis command failed")
		assert.Contains(t, buf.String(), "command=set")
	})

	t.Run("pipeline failure is logged", func(t *testing.T) {
		buf.Reset()
		boom := errors.New("timeout")
		err := hook.ProcessPipelineHook(func(context.Context, []redis.Cmder) error { return boom })(context.Background(), []redis.Cmder{cmd, cmd})
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, buf.String(), "commands=2")
	})
}
