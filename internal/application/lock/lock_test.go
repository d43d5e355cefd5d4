package lock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/pkg/platform/circuit"
	"jobboard/pkg/platform/sentinel"
)

func TestSubmissionKey(t *testing.T) {
	assert.Equal(t, "apply:7:3", SubmissionKey(7, 3))
}

func TestKeyedMutex_SerialisesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Lock(context.Background(), "apply:1:1")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			assert.NoError(t, release(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Equal(t, 0, k.size(), "entries are dropped when unused")
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	k := NewKeyedMutex()
	release, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, other(ctx))
}

func TestKeyedMutex_ContextCancel(t *testing.T) {
	k := NewKeyedMutex()
	release, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, release(context.Background()))
	require.NoError(t, release(context.Background()), "double release is a no-op")
	assert.Equal(t, 0, k.size())
}

type stubLocker struct {
	err      error
	calls    atomic.Int32
	released atomic.Int32
}

func (s *stubLocker) Lock(context.Context, string) (Release, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return func(context.Context) error { s.released.Add(1); return nil }, nil
}

type countingMetrics struct{ n atomic.Int32 }

func (c *countingMetrics) IncrementLockFallback() { c.n.Add(1) }

func newResilient(remote Locker, m *countingMetrics, opts ...circuit.Option) (*Resilient, *circuit.Breaker) {
	b := circuit.New("submission-lock", opts...)
	return NewResilient(NewKeyedMutex(), remote, b, slog.New(slog.NewTextHandler(io.Discard, nil)), m), b
}

func TestResilient_UsesRemoteWhenHealthy(t *testing.T) {
	remote := &stubLocker{}
	m := &countingMetrics{}
	r, _ := newResilient(remote, m)

	release, err := r.Lock(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
	assert.Equal(t, int32(1), remote.released.Load())
	assert.Zero(t, m.n.Load())
}

func TestResilient_FallsBackAndOpens(t *testing.T) {
	remote := &stubLocker{err: errors.New("connection refused")}
	m := &countingMetrics{}
	r, b := newResilient(remote, m, circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))

	for range 2 {
		release, err := r.Lock(context.Background(), "k")
		require.NoError(t, err, "redis failure degrades to the local lock")
		require.NoError(t, release(context.Background()))
	}
	assert.True(t, b.IsOpen())

	release, err := r.Lock(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
	assert.Equal(t, int32(2), remote.calls.Load(), "open breaker skips the remote lock")
	assert.Equal(t, int32(3), m.n.Load())
}

func TestResilient_LockHeldIsReturned(t *testing.T) {
	remote := &stubLocker{err: sentinel.ErrLockHeld}
	r, b := newResilient(remote, &countingMetrics{})

	_, err := r.Lock(context.Background(), "k")
	assert.ErrorIs(t, err, sentinel.ErrLockHeld)
	assert.False(t, b.IsOpen())

	// The local lock was released, so a second caller is not stuck.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = r.Lock(ctx, "k")
	assert.ErrorIs(t, err, sentinel.ErrLockHeld)
}
