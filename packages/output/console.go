package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/runner"
	"github.com/abdul-hamid-achik/lazyreq/packages/http"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose also prints response headers and timing.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.Result) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	resp := result.Response
	fmt.Fprintf(f.writer, "%s %s\n", green("["+result.Request.Method+"]"), green(resp.URL))

	status := color.New(statusColor(resp), color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s", green("Status:"), status(resp.StatusCode))
	if f.verbose {
		fmt.Fprintf(f.writer, " %s", cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
	}
	fmt.Fprintln(f.writer)

	if f.verbose && len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s %s\n", cyan(k+":"), resp.Headers[k])
		}
	}

	if len(resp.Body) == 0 {
		return
	}

	if gjson.ValidBytes(resp.Body) {
		body := pretty.Pretty(resp.Body)
		if !f.noColor && !color.NoColor {
			body = pretty.Color(body, nil)
		}
		fmt.Fprint(f.writer, string(body))
		return
	}
	fmt.Fprintln(f.writer, green(resp.BodyString()))
}

// statusColor picks the colour of a status code by its class.
func statusColor(resp *http.Response) color.Attribute {
	switch {
	case resp.IsSuccess():
		return color.FgGreen
	case resp.IsServerError():
		return color.FgRed
	case resp.IsClientError():
		return color.FgYellow
	default:
		return color.FgCyan
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
