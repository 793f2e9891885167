package docstore

import "errors"

var (
	// ErrNotFound is returned when a document id does not resolve.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
	// ErrInvalidQuery is returned for out-of-range pagination or bad filters.
	ErrInvalidQuery = errors.New("invalid query")
)

// IsPermanent reports whether retrying the call cannot change its outcome.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidQuery)
}
