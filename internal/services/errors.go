package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

// ServiceError carries a machine-readable code alongside the message shown
// verbatim to the caller. Validation failures are never silently corrected.
type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrUnknownProcess is returned when a survey references a process
	// absent from the catalog.
	ErrUnknownProcess = errors.New("unknown process")
	// ErrUnknownUser is returned when an assignment references a user
	// absent from the directory.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownSurvey is returned when an operation references a survey id
	// that does not exist.
	ErrUnknownSurvey = errors.New("unknown survey")
)
