package scheduling

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindForbidden:
		return "Forbidden"
	default:
		return "Unexpected"
	}
}

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type Code string

const (
	CodeInvalidInput           Code = "InvalidInput"
	CodeSlotNotFound           Code = "SlotNotFound"
	CodeAppointmentNotFound    Code = "AppointmentNotFound"
	CodeWorkerNotFound         Code = "WorkerNotFound"
	CodeNoWorkerAvailable      Code = "NoWorkerAvailable"
	CodeDuplicateBooking       Code = "DuplicateBooking"
	CodeSlotFullyBooked        Code = "SlotFullyBooked"
	CodeConcurrentModification Code = "ConcurrentModification"
	CodePersistenceError       Code = "PersistenceError"
	CodeNotBookingClient       Code = "NotBookingClient"
)

// Error is the only error type the engine returns.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func invalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notFound(code Code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func conflict(code Code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func forbidden(code Code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func persistence(op string, err error) *Error {
	return &Error{Kind: KindUnexpected, Code: CodePersistenceError, Message: op, Err: err}
}

// AsError extracts an *Error from err. Anything else is reported as an
// unexpected persistence failure so callers always get a kind to act on.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return persistence("unexpected failure", err)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
