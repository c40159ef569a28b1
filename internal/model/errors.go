package model

import (
	"fmt"
	"net/http"
)

// APIError is a failure the sandbox reports to the caller. It renders to the
// same body shape the production API uses.
type APIError struct {
	Status           int
	Description      string
	Extra            string
	SunatCode        string
	SunatDescription string
}

func (e *APIError) Error() string {
	if e.SunatCode != "" {
		return fmt.Sprintf("HTTP %d: [SUNAT %s] %s", e.Status, e.SunatCode, e.SunatDescription)
	}
	if e.Extra != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.Status, e.Description, e.Extra)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Description)
}

// Body returns the JSON object sent with the error status.
func (e *APIError) Body() map[string]any {
	body := map[string]any{
		"errors":            true,
		"descripcion_error": e.Description,
	}
	if e.Extra != "" {
		body["descripcion_extra"] = e.Extra
	}
	if e.SunatCode != "" {
		body["sunat_respuesta"] = e.SunatCode
		body["sunat_descripcion"] = e.SunatDescription
	}
	return body
}

// NewParameterError reports a rejected parameter (HTTP 400).
func NewParameterError(description, extra string) *APIError {
	return &APIError{
		Status:      http.StatusBadRequest,
		Description: description,
		Extra:       extra,
	}
}

// NewSunatError reports a verdict from the tax authority (HTTP 400).
func NewSunatError(code, description string) *APIError {
	return &APIError{
		Status:           http.StatusBadRequest,
		Description:      description,
		SunatCode:        code,
		SunatDescription: description,
	}
}

// NewAuthorizationError reports rejected credentials (HTTP 403).
func NewAuthorizationError(description string) *APIError {
	return &APIError{
		Status:      http.StatusForbidden,
		Description: description,
	}
}

// NewNegotiationError reports an unsupported request format (HTTP 406).
func NewNegotiationError(description string) *APIError {
	return &APIError{
		Status:      http.StatusNotAcceptable,
		Description: description,
	}
}
