package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeTimeout indicates the request timed out
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeMalformed indicates the response was received but its shape did not match
	ErrorTypeMalformed ErrorType = "malformed_response"
	// ErrorTypeNoData indicates a well-formed response without any price
	ErrorTypeNoData ErrorType = "no_data"
	// ErrorTypeParseExhausted indicates every HTML heuristic came up empty
	ErrorTypeParseExhausted ErrorType = "parse_exhausted"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// IsTransport reports whether the error belongs to the transport family:
// no connectivity, expiry or a non-2xx status.
func (e *FetchError) IsTransport() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeClient, ErrorTypeUnknown:
		return true
	}
	return false
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "network request failed",
		Cause:     cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewServerError creates a server error
func NewServerError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeServer,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "server returned an error",
	}
}

// NewClientError creates a client error
func NewClientError(statusCode int, message string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeClient,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// NewMalformedError creates an error for a response whose shape could not be decoded.
// cause is nil when the payload decoded but a required field was missing.
func NewMalformedError(message string, cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeMalformed,
		Retryable: false,
		Message:   message,
		Cause:     cause,
	}
}

// NewNoDataError creates an error for a well-formed response without prices
func NewNoDataError(message string) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNoData,
		Retryable: false,
		Message:   message,
	}
}

// NewParseExhaustedError creates an error for a page where no heuristic matched
func NewParseExhaustedError(message string) *FetchError {
	return &FetchError{
		Type:      ErrorTypeParseExhausted,
		Retryable: false,
		Message:   message,
	}
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == 429:
		return NewRateLimitError(statusCode)
	case statusCode >= 500:
		return NewServerError(statusCode)
	case statusCode >= 400:
		return NewClientError(statusCode, "request rejected by server")
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			Retryable:  false,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}

// ClassifyTransportError turns an error returned by the HTTP client into a FetchError
func ClassifyTransportError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}

const (
	messageLoadFailed = "Error al cargar los datos"
	messageNoData     = "No se encontraron datos de precios"
	messageBadFormat  = "Formato de datos inesperado"
	messageDecode     = "Error al procesar los datos"
)

// UserMessage returns the human-readable cause shown to the user when a source fails.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		return fmt.Sprintf("%s: %v", messageLoadFailed, err)
	}
	switch fe.Type {
	case ErrorTypeNoData, ErrorTypeParseExhausted:
		return messageNoData
	case ErrorTypeMalformed:
		if fe.Cause != nil {
			return fmt.Sprintf("%s: %v", messageDecode, fe.Cause)
		}
		return messageBadFormat
	default:
		if fe.StatusCode > 0 {
			return fmt.Sprintf("%s: %s (HTTP %d)", messageLoadFailed, fe.Message, fe.StatusCode)
		}
		return fmt.Sprintf("%s: %s", messageLoadFailed, fe.Message)
	}
}
