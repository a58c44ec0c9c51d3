package output

import (
	"io"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/runner"
	"github.com/pkg/errors"
)

// Formatter writes results and errors to an output stream.
type Formatter interface {
	FormatResult(result *runner.Result)
	FormatError(err error)
}

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns the formatter registered under format.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(WithJSONWriter(w)), nil
	default:
		return nil, errors.Errorf("unknown output format %q (expected console or json)", format)
	}
}
