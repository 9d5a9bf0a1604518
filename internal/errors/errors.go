package errors

import "errors"

// ErrNotFound is returned by the store when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err wraps an *ErrValidation.
func IsValidation(err error) bool {
	var v *ErrValidation
	return errors.As(err, &v)
}
