package lock

import (
	"context"
	"errors"
	"log/slog"

	"jobboard/pkg/platform/circuit"
	"jobboard/pkg/platform/sentinel"
)

// FallbackCounter counts acquisitions that skipped the distributed lock.
type FallbackCounter interface {
	IncrementLockFallback()
}

// Resilient always takes the in-process lock, then the distributed one while
// the breaker allows it. When the distributed lock keeps failing the breaker
// opens and only the in-process lock (plus the store's uniqueness constraint)
// guards submissions until a probe succeeds.
type Resilient struct {
	local   Locker
	remote  Locker
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics FallbackCounter
}

func NewResilient(local, remote Locker, breaker *circuit.Breaker, logger *slog.Logger, metrics FallbackCounter) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{local: local, remote: remote, breaker: breaker, logger: logger, metrics: metrics}
}

func (r *Resilient) Lock(ctx context.Context, key string) (Release, error) {
	releaseLocal, err := r.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	if !r.breaker.Allow() {
		r.fallback()
		return releaseLocal, nil
	}

	releaseRemote, err := r.remote.Lock(ctx, key)
	switch {
	case err == nil:
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "distributed lock recovered", "breaker", r.breaker.Name())
		}
		return both(releaseRemote, releaseLocal), nil
	case errors.Is(err, sentinel.ErrLockHeld):
		// Redis answered; another instance holds the key.
		r.breaker.RecordSuccess()
		_ = releaseLocal(ctx)
		return nil, err
	case ctx.Err() != nil:
		_ = releaseLocal(ctx)
		return nil, ctx.Err()
	}

	if _, change := r.breaker.RecordFailure(); change.Opened {
		r.logger.WarnContext(ctx, "distributed lock unavailable, using in-process lock",
			"breaker", r.breaker.Name(),
			"error", err,
		)
	} else {
		r.logger.WarnContext(ctx, "distributed lock failed", "key", key, "error", err)
	}
	r.fallback()
	return releaseLocal, nil
}

func (r *Resilient) fallback() {
	if r.metrics != nil {
		r.metrics.IncrementLockFallback()
	}
}

func both(first, second Release) Release {
	return func(ctx context.Context) error {
		return errors.Join(first(ctx), second(ctx))
	}
}
