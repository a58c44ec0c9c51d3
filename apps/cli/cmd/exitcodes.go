package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/config"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
)

// Exit codes for lazyreq CLI
const (
	// ExitSuccess indicates the request ran (or was exported) successfully
	ExitSuccess = 0

	// ExitStatusFailure indicates a non-2xx response while --fail is set
	ExitStatusFailure = 1

	// ExitParseError indicates a malformed definition file
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a request could not be executed
	ExitNetworkError = 4

	// ExitResolutionError indicates a token, macro or request could not be resolved
	ExitResolutionError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries an explicit exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageErrorf(format string, args ...any) error {
	return &exitError{code: ExitUsageError, err: fmt.Errorf(format, args...)}
}

func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	switch {
	case errors.Is(err, errs.ErrInvalidDefinition):
		return ExitParseError
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errs.IsResolution(err):
		return ExitResolutionError
	case errors.Is(err, errs.ErrExecution),
		errors.Is(err, errs.ErrTransport),
		errors.Is(err, errs.ErrMultipartSource):
		return ExitNetworkError
	default:
		return ExitStatusFailure
	}
}
