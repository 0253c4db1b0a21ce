package wifi

import (
	"errors"
	"fmt"
)

// Adapter errors.
var (
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("not available")
	ErrOperationFailed  = errors.New("operation failed")
	ErrWirelessDisabled = errors.New("wireless is disabled")
)

// Request errors. These are terminal for the request that produced them.
var (
	ErrScanRequestFailed   = errors.New("scan request failed")
	ErrNetworkNotFound     = errors.New("network not found")
	ErrUnsupportedAuthType = errors.New("unsupported auth type")
	ErrRegistrationFailed  = errors.New("registration failed")
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidParams       = errors.New("invalid params")
	ErrTimedOut            = errors.New("timed out")
	ErrRadioUnavailable    = errors.New("radio unavailable")
	ErrScanInProgress      = errors.New("scan in progress")
	ErrEnableFailed        = errors.New("enable failed")
)

// RequestError carries the human-readable message reported to callers along
// with the error kind and the underlying cause, if any.
type RequestError struct {
	Kind    error
	Message string
	Err     error
}

// NewRequestError builds a RequestError of the given kind.
func NewRequestError(kind error, cause error, format string, a ...any) *RequestError {
	return &RequestError{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Err:     cause,
	}
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
