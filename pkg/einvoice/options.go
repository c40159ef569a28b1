package einvoice

// Functional options applied once in New, plus the transport settings that
// SetTransportOptions may replace later.

import (
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// HTTPDoer is the subset of *http.Client the client needs. Tests and hosts
// with their own HTTP stack inject one with WithHTTPClient.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportOptions are low-level HTTP settings applied to every call. They
// are passed to net/http as given and never validated.
type TransportOptions struct {
	// Timeout bounds a whole request, including reading the response.
	// Zero means no timeout; prefer a context deadline per call.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Proxy selects a proxy per request. Nil keeps the environment proxy.
	Proxy func(*http.Request) (*url.URL, error)

	// Transport replaces the default base round tripper. When set,
	// InsecureSkipVerify and Proxy are ignored.
	Transport http.RoundTripper

	// Header is added to every request. Authorization and Content-Type
	// are always set by the client and cannot be overridden here.
	Header http.Header

	// Debug dumps each request and response to the client logger at debug
	// level. The bearer token is redacted.
	Debug bool
}

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPClient makes the client send requests through doer instead of an
// *http.Client built from TransportOptions. Only TransportOptions.Header is
// honoured in that case.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) error {
		if doer == nil {
			return errors.New("http client must not be nil")
		}
		c.doer = doer
		return nil
	}
}

// WithLogger sets the logger used for per-call debug events and the debug
// transport. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithTransportOptions sets the initial transport options. Equivalent to
// calling SetTransportOptions right after New.
func WithTransportOptions(opts TransportOptions) Option {
	return func(c *Client) error {
		c.transport = opts
		return nil
	}
}

// newHTTPClient builds the *http.Client used when no HTTPDoer was injected.
func newHTTPClient(opts TransportOptions, logger zerolog.Logger) *http.Client {
	base := opts.Transport
	if base == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			if t.TLSClientConfig == nil {
				t.TLSClientConfig = &tls.Config{}
			}
			t.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // explicit caller opt-in
		}
		if opts.Proxy != nil {
			t.Proxy = opts.Proxy
		}
		base = t
	}

	if opts.Debug {
		base = &debugTransport{base: base, logger: logger}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: base,
	}
}

// debugRequested reports whether EINVOICE_DEBUG=true is set in the environment.
func debugRequested() bool {
	return os.Getenv("EINVOICE_DEBUG") == "true"
}
