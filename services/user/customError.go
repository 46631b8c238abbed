package user

import "errors"

// ErrUserNotFound is returned for lookups and writes on a missing user.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
