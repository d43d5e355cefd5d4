//go:build integration

package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jobboard/internal/application/lock"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/testutil/containers"
)

type RedisLockerSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisLockerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockerSuite))
}

func (s *RedisLockerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLockerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockerSuite) TestMutualExclusion() {
	locker := lock.NewRedisLocker(s.redis.Client, lock.WithRetryInterval(5*time.Millisecond))
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(ctx, "apply:1:1")
			if !s.NoError(err) {
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			s.NoError(release(ctx))
		}()
	}
	wg.Wait()
	s.Equal(int32(1), maxSeen.Load())
}

func (s *RedisLockerSuite) TestHeldLockTimesOut() {
	ctx := context.Background()
	holder := lock.NewRedisLocker(s.redis.Client)
	release, err := holder.Lock(ctx, "apply:2:2")
	s.Require().NoError(err)
	defer func() { _ = release(ctx) }()

	waiter := lock.NewRedisLocker(s.redis.Client,
		lock.WithMaxWait(50*time.Millisecond),
		lock.WithRetryInterval(10*time.Millisecond))
	_, err = waiter.Lock(ctx, "apply:2:2")
	s.ErrorIs(err, sentinel.ErrLockHeld)
}

func (s *RedisLockerSuite) TestExpiredLockIsNotReleasedByOldOwner() {
	ctx := context.Background()
	short := lock.NewRedisLocker(s.redis.Client, lock.WithTTL(30*time.Millisecond))
	staleRelease, err := short.Lock(ctx, "apply:3:3")
	s.Require().NoError(err)
	time.Sleep(60 * time.Millisecond)

	fresh := lock.NewRedisLocker(s.redis.Client)
	release, err := fresh.Lock(ctx, "apply:3:3")
	s.Require().NoError(err)

	s.NoError(staleRelease(ctx))
	n, err := s.redis.Client.Exists(ctx, "jobboard:lock:apply:3:3").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n, "the new owner's lock must survive the stale release")
	s.NoError(release(ctx))
}
