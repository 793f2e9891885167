package service

import "errors"

// ValidationError is a caller-correctable failure. The message is safe to
// show to the caller.
type ValidationError struct {
	Message string
	// NotFound marks the survey-not-found variants.
	NotFound bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrTooFewOptions         = &ValidationError{Message: "a survey must have at least 2 answer options"}
	ErrSurveyNotFound        = &ValidationError{Message: "survey not found", NotFound: true}
	ErrDeleteActive          = &ValidationError{Message: "cannot delete an active survey, deactivate it first"}
	ErrOrderAlreadyResponded = &ValidationError{Message: "this order already has a response recorded for this survey"}
)

// ErrConcurrentUpdate is returned when another request holds the lock for
// the same activation or order.
var ErrConcurrentUpdate = errors.New("another request is updating this resource, retry shortly")

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a not-found ValidationError.
func IsNotFound(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.NotFound
}
