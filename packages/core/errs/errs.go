// Package errs defines the failure kinds surfaced by lazyreq.
//
// Every error returned by the core packages matches exactly one kind below
// under errors.Is. Kinds are grouped by how the CLI reacts to them:
// definition errors abort before anything runs, resolution errors abort the
// current command, cache errors are logged and treated as misses, and
// execution errors abort the request that triggered them.
package errs

import (
	"strings"

	"github.com/pkg/errors"
)

// Load time.
var (
	ErrInvalidDefinition = errors.New("invalid definition")
)

// Resolution time.
var (
	ErrUnresolvedToken  = errors.New("variable or hook not found")
	ErrMacroNotFound    = errors.New("macro references unknown request")
	ErrRequestNotFound  = errors.New("request not found")
	ErrJSONParse        = errors.New("macro result is not valid JSON")
	ErrJSONPathNotFound = errors.New("macro path not found")
	ErrCycleDetected    = errors.New("macro cycle detected")
)

// Cache.
var (
	ErrCacheCorruption = errors.New("cache entry corrupted")
	ErrCacheIO         = errors.New("cache io failure")
)

// Execution.
var (
	ErrExecution       = errors.New("request execution failed")
	ErrTransport       = errors.New("transport failure")
	ErrMultipartSource = errors.New("multipart source unavailable")
)

// Error ties a failure kind to the subject it concerns (a token, a request
// id, a cache key) and the underlying cause, if any.
type Error struct {
	Kind    error
	Subject string
	Err     error
}

// New returns an *Error of the given kind. cause may be nil.
func New(kind error, subject string, cause error) error {
	return &Error{Kind: kind, Subject: subject, Err: cause}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Subject != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Subject)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsResolution reports whether err aborted template or macro resolution.
func IsResolution(err error) bool {
	for _, kind := range []error{
		ErrUnresolvedToken,
		ErrMacroNotFound,
		ErrRequestNotFound,
		ErrJSONParse,
		ErrJSONPathNotFound,
		ErrCycleDetected,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsCache reports whether err is a recoverable cache failure.
func IsCache(err error) bool {
	return errors.Is(err, ErrCacheIO) || errors.Is(err, ErrCacheCorruption)
}
