package cli

import (
	"errors"

	"github.com/jacentio/simpledb/sdb"
)

// Exit codes for the sdb CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitFailure indicates an error not covered by a more specific code
	ExitFailure = 1

	// ExitServiceError indicates the service rejected the request
	ExitServiceError = 2

	// ExitInvalidInput indicates a domain, item or attribute was rejected locally
	ExitInvalidInput = 3

	// ExitConfigError indicates missing credentials or invalid settings
	ExitConfigError = 4

	// ExitNetworkError indicates the endpoint could not be reached or answered garbage
	ExitNetworkError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// usageError marks errors caused by bad flags or arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ue):
		return ExitUsageError
	case errors.Is(err, sdb.ErrService):
		return ExitServiceError
	case errors.Is(err, sdb.ErrEncoding):
		return ExitInvalidInput
	case errors.Is(err, sdb.ErrConfiguration):
		return ExitConfigError
	case errors.Is(err, sdb.ErrTransport), errors.Is(err, sdb.ErrDecoding):
		return ExitNetworkError
	}
	return ExitFailure
}
