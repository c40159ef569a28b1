// Package einvoice is a client for a SUNAT-facing electronic-invoicing API.
//
// The API exposes one POST endpoint per command under a tenant base URL.
// Requests carry a bearer token and a JSON object of parameters; responses
// are JSON objects. Failures are reported as *Error values whose Kind tells
// the caller what went wrong:
//
//	c, err := einvoice.New(token, "https://api.example.pe/api/v1/"+tenant)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := c.Emit(ctx, einvoice.Params{"serie": "F001", "numero": 1})
//	if errors.Is(err, einvoice.ErrParameter) {
//	    fmt.Println("rejected:", err)
//	}
package einvoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Params are the JSON object sent as the request body.
type Params map[string]any

// Response is a decoded JSON object returned by the API.
type Response map[string]any

// Messages used for failures whose body is not trusted.
const (
	MessageInternalError   = "Internal API error; contact the administrator."
	messageUnexpectedError = "Unexpected error; contact the administrator. [%d]"
)

// Client executes commands against one tenant of the API.
//
// A Client is safe for concurrent use: parameters travel with each Call
// instead of being staged on the client, and the last-response slot and
// transport settings are guarded by a mutex.
type Client struct {
	creds  credentials
	logger zerolog.Logger
	doer   HTTPDoer

	mu        sync.RWMutex
	transport TransportOptions
	http      *http.Client
	last      Response
}

// New validates the credentials and returns a ready client. It fails with
// KindInvalidConfiguration when token is not 64 lowercase hex characters or
// baseURL is not an http(s) URL with a tenant UUID segment. No network
// activity happens here.
func New(token, baseURL string, opts ...Option) (*Client, error) {
	creds, err := newCredentials(token, baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		creds:  creds,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, newError(KindInvalidConfiguration, err.Error(), err)
		}
	}

	if debugRequested() {
		c.transport.Debug = true
	}
	c.http = newHTTPClient(c.transport, c.logger)

	return c, nil
}

// BaseURL returns the base URL the client was created with.
func (c *Client) BaseURL() string { return c.creds.baseURL }

// Tenant returns the tenant UUID parsed from the base URL.
func (c *Client) Tenant() uuid.UUID { return c.creds.tenant }

// SetTransportOptions replaces the transport options wholesale. Fields left
// at their zero value are reset, not merged with the previous options.
func (c *Client) SetTransportOptions(opts TransportOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport = opts
	c.http = newHTTPClient(opts, c.logger)
}

// TransportOptions returns the options currently applied to every call.
func (c *Client) TransportOptions() TransportOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport
}

// LastResponse returns a copy of the most recently decoded response body.
// It is empty until a call has decoded a response, and is updated even
// when that call then failed with a parameter, authorization or
// negotiation error.
func (c *Client) LastResponse() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Response{}
	}
	return cloneResponse(c.last)
}

// Call is a command invocation with its parameters bound.
type Call struct {
	client *Client
	params Params
}

// WithParameters binds a snapshot of params to a new Call. Later changes to
// the params map do not affect the call.
func (c *Client) WithParameters(params Params) *Call {
	return &Call{client: c, params: maps.Clone(params)}
}

// Params returns the parameters bound to the call.
func (call *Call) Params() Params {
	return maps.Clone(call.params)
}

// Execute runs command with the bound parameters.
func (call *Call) Execute(ctx context.Context, command string) (Response, error) {
	return call.client.execute(ctx, command, call.params)
}

// Execute runs command with no parameters; the body sent is "{}".
func (c *Client) Execute(ctx context.Context, command string) (Response, error) {
	return c.execute(ctx, command, nil)
}

func (c *Client) execute(ctx context.Context, command string, params Params) (resp Response, err error) {
	if command == "" {
		return nil, newError(KindParameter, "command must not be empty", nil)
	}

	start := time.Now()
	status := 0
	defer func() {
		label := commandLabel(command)
		requestsTotal.WithLabelValues(label, outcomeLabel(err)).Inc()
		requestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

		ev := c.logger.Debug()
		if err != nil {
			ev = c.logger.Warn().Err(err)
		}
		ev.Str("command", command).
			Int("status_code", status).
			Dur("duration", time.Since(start)).
			Msg("einvoice call")
	}()

	if params == nil {
		params = Params{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, newError(KindParameter, fmt.Sprintf("failed to encode parameters: %v", err), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.baseURL+"/"+command, bytes.NewReader(payload))
	if err != nil {
		return nil, newError(KindTransport, err.Error(), err)
	}

	c.mu.RLock()
	doer := c.doer
	if doer == nil {
		doer = c.http
	}
	for key, values := range c.transport.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	c.mu.RUnlock()

	req.Header.Set("Authorization", "Bearer "+c.creds.token)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := doer.Do(req)
	if err != nil {
		return nil, newError(KindTransport, err.Error(), err)
	}
	defer httpResp.Body.Close()

	status = httpResp.StatusCode
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		e := newError(KindTransport, err.Error(), err)
		e.StatusCode = status
		return nil, e
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		e := newError(KindFatal, fmt.Sprintf("invalid response from API (HTTP %d): %s", status, body), err)
		e.StatusCode = status
		e.Body = body
		return nil, e
	}

	c.mu.Lock()
	c.last = decoded
	c.mu.Unlock()

	if cerr := classify(status, decoded); cerr != nil {
		cerr.Body = body
		cerr.Response = cloneResponse(decoded)
		return nil, cerr
	}

	return cloneResponse(decoded), nil
}

// cloneResponse copies r together with its nested objects and arrays, so
// callers never share memory with the stored last response.
func cloneResponse(r Response) Response {
	if r == nil {
		return nil
	}
	out := make(Response, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// classify maps an HTTP status and decoded body to an error, or nil for
// success. Statuses the table does not name (1xx, 2xx, 3xx) succeed.
func classify(status int, body Response) *Error {
	var e *Error
	switch {
	case status >= 500:
		e = newError(KindFatal, MessageInternalError, nil)
	case status == http.StatusBadRequest:
		e = newError(KindParameter, errorMessage(body), nil)
	case status == http.StatusForbidden:
		e = newError(KindAuthorization, errorMessage(body), nil)
	case status == http.StatusNotAcceptable:
		e = newError(KindNegotiation, errorMessage(body), nil)
	case status >= 401 && status <= 499:
		e = newError(KindFatal, fmt.Sprintf(messageUnexpectedError, status), nil)
	default:
		return nil
	}
	e.StatusCode = status
	return e
}

// errorMessage derives the failure text from a response body. A SUNAT
// verdict wins over the API's own description.
func errorMessage(body Response) string {
	if code, ok := body["sunat_respuesta"]; ok {
		return fmt.Sprintf("[SUNAT %s] %s", stringify(code), stringify(body["sunat_descripcion"]))
	}
	if desc, ok := body["descripcion_error"]; ok {
		msg := stringify(desc)
		if extra := body["descripcion_extra"]; truthy(extra) {
			msg += " - " + stringify(extra)
		}
		return msg
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// truthy mirrors the API's notion of a present value: empty strings, "0",
// zero, false, null and empty collections are absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
