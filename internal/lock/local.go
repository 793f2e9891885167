package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalLocker implements Locker in process. It only serializes callers
// within one server instance.
type LocalLocker struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	leases map[string]lease
	seq    uint64
}

type lease struct {
	token   uint64
	expires time.Time
}

// NewLocalLocker creates an in-process locker; ttl <= 0 uses DefaultTTL.
func NewLocalLocker(ttl time.Duration) *LocalLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LocalLocker{ttl: ttl, now: time.Now, leases: make(map[string]lease)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.leases[key]; ok && now.Before(held.expires) {
		return nil, fmt.Errorf("%s: %w", key, ErrLocked)
	}
	l.seq++
	token := l.seq
	l.leases[key] = lease{token: token, expires: now.Add(l.ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		held, ok := l.leases[key]
		if !ok || held.token != token {
			return fmt.Errorf("%s: %w", key, ErrLockLost)
		}
		delete(l.leases, key)
		return nil
	}, nil
}
