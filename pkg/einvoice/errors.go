package einvoice

import (
	"errors"
	"fmt"
)

// Kind classifies a failure returned by the client.
type Kind int

const (
	// KindInvalidConfiguration means the token or base URL failed validation
	// at construction time. The client was never created.
	KindInvalidConfiguration Kind = iota + 1

	// KindTransport means the request never produced an HTTP response
	// (connection refused, DNS, TLS, timeout, canceled context).
	KindTransport

	// KindFatal covers HTTP >= 500, undecodable bodies and 4xx statuses the
	// API does not document.
	KindFatal

	// KindParameter means the API rejected the call parameters (HTTP 400).
	KindParameter

	// KindAuthorization means the API rejected the credentials (HTTP 403).
	KindAuthorization

	// KindNegotiation means the API rejected content negotiation (HTTP 406).
	KindNegotiation
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindTransport:
		return "transport error"
	case KindFatal:
		return "fatal API error"
	case KindParameter:
		return "parameter error"
	case KindAuthorization:
		return "authorization error"
	case KindNegotiation:
		return "negotiation error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Sentinel errors, one per Kind. Compare with errors.Is:
//
//	if errors.Is(err, einvoice.ErrParameter) { ... }
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrTransport            = errors.New("transport error")
	ErrFatal                = errors.New("fatal API error")
	ErrParameter            = errors.New("parameter error")
	ErrAuthorization        = errors.New("authorization error")
	ErrNegotiation          = errors.New("negotiation error")
)

var sentinels = map[Kind]error{
	KindInvalidConfiguration: ErrInvalidConfiguration,
	KindTransport:            ErrTransport,
	KindFatal:                ErrFatal,
	KindParameter:            ErrParameter,
	KindAuthorization:        ErrAuthorization,
	KindNegotiation:          ErrNegotiation,
}

// Error is the single error type returned by Client. Message holds the text
// the API (or the client) produced for the failure; for parameter,
// authorization and negotiation errors it is derived from the response body.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int      // 0 when no HTTP response was received
	Body       []byte   // raw response body, if any
	Response   Response // decoded response body, nil when undecodable
	Cause      error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}
