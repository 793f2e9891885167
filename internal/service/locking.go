package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"postsurvey/internal/lock"
)

// acquire takes key on locker when one is configured. A busy key fails with
// ErrConcurrentUpdate; a failing lock backend is logged and the caller
// proceeds unlocked.
func acquire(ctx context.Context, locker lock.Locker, key string, logger zerolog.Logger) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	unlock, err := locker.Lock(ctx, key)
	if errors.Is(err, lock.ErrLocked) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("lock unavailable, continuing without it")
		return func() {}, nil
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}, nil
}
