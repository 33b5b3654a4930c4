package sdb

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

var (
	// ErrConfiguration is returned when the client is built with missing or invalid settings.
	ErrConfiguration = errors.New("simpledb: invalid configuration")

	// ErrEncoding is returned when a domain, item or attribute violates the store's constraints.
	ErrEncoding = errors.New("simpledb: invalid request data")

	// ErrTransport is returned when no response could be obtained from the endpoint.
	ErrTransport = errors.New("simpledb: transport failure")

	// ErrDecoding is returned when a response body does not have the expected shape.
	ErrDecoding = errors.New("simpledb: malformed response")

	// ErrService is returned when the service reports an application error.
	ErrService = errors.New("simpledb: service error")
)

// ConfigError reports an invalid Config field. It matches ErrConfiguration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("simpledb: config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// EncodingError reports a name or value rejected before sending. It matches ErrEncoding.
type EncodingError struct {
	Field  string
	Value  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("simpledb: %s %q: %s", e.Field, truncate(e.Value, 64), e.Reason)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// TransportError wraps a connection, DNS, timeout or read failure. It matches ErrTransport.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("simpledb: %s: transport: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodingError wraps a parser failure. It matches ErrDecoding.
type DecodingError struct {
	Action string
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("simpledb: %s: decode response: %v", e.Action, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func (e *DecodingError) Is(target error) bool { return target == ErrDecoding }

// ServiceError is an error document returned by the service. It matches
// ErrService and implements smithy.APIError.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	BoxUsage   float64
}

var _ smithy.APIError = (*ServiceError)(nil)

func (e *ServiceError) Error() string {
	return fmt.Sprintf("simpledb: %s (status %d, request %s): %s", e.Code, e.StatusCode, e.RequestID, e.Message)
}

func (e *ServiceError) Is(target error) bool { return target == ErrService }

// ErrorCode returns the service error code, e.g. "NoSuchDomain".
func (e *ServiceError) ErrorCode() string { return e.Code }

// ErrorMessage returns the service error message.
func (e *ServiceError) ErrorMessage() string { return e.Message }

// ErrorFault classifies the error as a client or server fault from the status code.
func (e *ServiceError) ErrorFault() smithy.ErrorFault {
	switch {
	case e.StatusCode >= http.StatusInternalServerError:
		return smithy.FaultServer
	case e.StatusCode >= http.StatusBadRequest:
		return smithy.FaultClient
	}
	return smithy.FaultUnknown
}

// IsNotFound reports whether err is a NoSuchDomain service error.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == "NoSuchDomain"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
