package service

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("TMDB API key not configured")

// ErrorKind classifies a failed catalog call
type ErrorKind int

const (
	// KindNetwork is a transport failure: DNS, connect, timeout, cancellation.
	KindNetwork ErrorKind = iota + 1
	// KindHTTPStatus is a non-2xx answer.
	KindHTTPStatus
	// KindParse is a body that is not JSON or does not have the expected shape.
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is the uniform failure of every catalog call.
// Callers never receive partial data alongside it.
type FetchError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
	case KindParse:
		return fmt.Sprintf("%s: malformed response: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a *FetchError in err's chain, or 0
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

func parseError(endpoint string, format string, args ...interface{}) *FetchError {
	return &FetchError{
		Kind:     KindParse,
		Endpoint: endpoint,
		Err:      fmt.Errorf(format, args...),
	}
}
