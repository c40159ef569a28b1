package einvoice

import (
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog"
)

// debugTransport dumps every request and response through the client logger.
// It logs full bodies, so only enable it while troubleshooting.
type debugTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	redacted := req.Clone(req.Context())
	if redacted.Header.Get("Authorization") != "" {
		redacted.Header.Set("Authorization", "Bearer [redacted]")
	}
	// The clone shares the original body; only dump a fresh copy of it.
	withBody := false
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			redacted.Body = body
			withBody = true
		}
	}
	if dump, err := httputil.DumpRequestOut(redacted, withBody); err == nil {
		dt.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Str("request_dump", string(dump)).
			Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		dt.logger.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("HTTP request failed")
		return nil, err
	}

	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Int("status_code", resp.StatusCode).
			Str("response_dump", string(dump)).
			Msg("HTTP response")
	}
	return resp, nil
}
