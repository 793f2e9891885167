// Package lock provides short-lived mutual exclusion keyed by string, used
// to serialize survey activation and per-order submissions.
package lock

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLocked is returned when another holder owns the key.
	ErrLocked = errors.New("lock is held")
	// ErrLockLost is returned by Unlock when the lease expired and the key
	// was taken over or removed before release.
	ErrLockLost = errors.New("lock lost before release")
)

// DefaultTTL bounds how long a crashed holder can block a key.
const DefaultTTL = 10 * time.Second

// Unlock releases a held key.
type Unlock func(ctx context.Context) error

// Locker acquires exclusive, expiring leases on keys. Lock does not wait: a
// busy key fails with ErrLocked.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// ActivationKey guards the deactivate-others-then-activate sequence.
const ActivationKey = "survey:activation"

// ResponseKey guards one order's submission to one survey.
func ResponseKey(surveyID, orderID string) string {
	return "response:" + surveyID + ":" + orderID
}
