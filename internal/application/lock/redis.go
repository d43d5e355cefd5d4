package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobboard/pkg/platform/sentinel"
)

const (
	defaultTTL     = 30 * time.Second
	defaultRetry   = 50 * time.Millisecond
	defaultMaxWait = 10 * time.Second
	redisKeyPrefix = "jobboard:lock:"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance SET NX PX lock with token-checked release.
type RedisLocker struct {
	client  redis.Cmdable
	ttl     time.Duration
	retry   time.Duration
	maxWait time.Duration
}

type RedisOption func(*RedisLocker)

// WithTTL bounds how long a crashed holder can block a key.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithRetryInterval(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.retry = d
		}
	}
}

func WithMaxWait(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.maxWait = d
		}
	}
}

func NewRedisLocker(client redis.Cmdable, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client:  client,
		ttl:     defaultTTL,
		retry:   defaultRetry,
		maxWait: defaultMaxWait,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock polls SET NX until it wins, ctx ends, or maxWait passes. Redis errors
// are returned wrapped in sentinel.ErrUnavailable.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Release, error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: redis lock %s: %v", sentinel.ErrUnavailable, key, err)
		}
		if ok {
			return l.release(redisKey, token), nil
		}
		if time.Now().After(deadline) {
			return nil, sentinel.ErrLockHeld
		}
		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) release(redisKey, token string) Release {
	return func(ctx context.Context) error {
		// A cancelled request must still free the key.
		ctx = context.WithoutCancel(ctx)
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("release redis lock: %w", err)
		}
		return nil
	}
}
