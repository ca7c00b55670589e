package federation

import (
	"errors"
	"fmt"
)

var (
	ErrMissingProperty        = errors.New("missing property")
	ErrUnsupported            = errors.New("unsupported")
	ErrUnprocessablePropValue = errors.New("unprocessable property value")

	// ErrInvalidObject marks objects that failed validation: spoofed origin,
	// missing identity, wrong shape. Never retried.
	ErrInvalidObject = errors.New("invalid object")
)

// FetchError reports a failed remote dereference together with its HTTP status,
// so callers can branch on the classification instead of parsing error text.
// A zero StatusCode means the request never produced a response (network error).
type FetchError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ClientError reports whether the remote answered with a 4xx. These are
// terminal: the target is gone or was never there, retrying cannot help.
func (e *FetchError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsClientError reports whether err is a remote 4xx response. Boundaries that
// merely wanted a dependency (reply target, quote, announce target) absorb
// these and degrade; everything else propagates for external retry.
func IsClientError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.ClientError()
}

// IsPermanent reports whether err can never succeed on retry: a validation
// failure or a remote 4xx.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidObject) ||
		errors.Is(err, ErrUnsupported) ||
		errors.Is(err, ErrMissingProperty) ||
		errors.Is(err, ErrUnprocessablePropValue) ||
		IsClientError(err)
}
