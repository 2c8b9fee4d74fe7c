package api

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceNotFound is returned when no client is registered under a name.
	ErrServiceNotFound = errors.New("service not found")
	// ErrUnsupportedQuery is returned when a client cannot map a raw query to an operation.
	ErrUnsupportedQuery = errors.New("unsupported query")
)

// UpstreamError carries the raw error payload returned by a provider.
// Err is set when the failure happened in transport rather than in the provider.
type UpstreamError struct {
	Provider string
	Payload  string
	Err      error
}

// NewUpstreamError creates an UpstreamError for the given provider and payload.
func NewUpstreamError(provider, payload string) *UpstreamError {
	return &UpstreamError{Provider: provider, Payload: payload}
}

// NewTransportError creates an UpstreamError from a failed request.
func NewTransportError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Payload: err.Error(), Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Payload)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
