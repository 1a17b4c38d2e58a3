package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies why a catalog load failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindOffline
	KindServerError
	KindClientError
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindOffline:
		return "offline"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// MessageKey returns the translation key of the user-facing message.
func (k Kind) MessageKey() string {
	switch k {
	case KindOffline:
		return "errorOffline"
	case KindServerError:
		return "errorServer"
	case KindClientError:
		return "errorClient"
	case KindMalformedResponse:
		return "errorMalformed"
	default:
		return "errorUnknown"
	}
}

// LoadError is returned by the loader once retries are exhausted or a
// failure is known to be permanent.
type LoadError struct {
	Kind   Kind
	Status int // HTTP status, 0 when not applicable
	Err    error
}

func (e *LoadError) Error() string {
	msg := "catalog load failed (" + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(", HTTP %d", e.Status)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err. Errors that are not
// *LoadError are reported as KindUnknown.
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

func malformed(format string, args ...any) error {
	return &LoadError{Kind: KindMalformedResponse, Err: fmt.Errorf(format, args...)}
}

// asLoadError makes sure whatever escapes the loader is a *LoadError.
func asLoadError(err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Kind: KindUnknown, Err: err}
}
