// Package curl renders resolved requests as curl commands.
package curl

import (
	"strings"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/runner"
	"github.com/abdul-hamid-achik/lazyreq/packages/http"
)

// Exporter converts resolved requests to curl commands.
type Exporter struct {
	multiline bool
	insecure  bool
}

// Option is a functional option for Exporter.
type Option func(*Exporter)

// WithMultiline puts every argument group on its own continued line.
func WithMultiline(multiline bool) Option {
	return func(e *Exporter) {
		e.multiline = multiline
	}
}

// WithInsecure adds -k to the main command.
func WithInsecure(insecure bool) Option {
	return func(e *Exporter) {
		e.insecure = insecure
	}
}

func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export returns a shell command equivalent to req. Files to download for
// multipart parts are fetched by preceding curl commands chained with &&.
func (e *Exporter) Export(req *runner.ResolvedRequest) string {
	var (
		steps []string
		args  []string
	)

	args = append(args, "curl")
	if e.insecure {
		args = append(args, "-k")
	}
	switch req.Method {
	case "GET":
	case "HEAD":
		args = append(args, "--head")
	default:
		args = append(args, "-X "+req.Method)
	}
	args = append(args, Quote(req.URL))

	for _, h := range req.Headers {
		args = append(args, "-H "+Quote(h.Key+": "+h.Value))
	}

	if req.IsMultipart() {
		for _, part := range req.Parts {
			switch part.Source {
			case parser.SourceLocalFile:
				args = append(args, "-F "+Quote(part.Name+"=@"+formFileName(part.Value)))
			case parser.SourceRemoteDownload:
				name := http.FileNameFromURL(part.Value)
				steps = append(steps, "curl -sSLo "+Quote(name)+" "+Quote(part.Value))
				args = append(args, "-F "+Quote(part.Name+"=@"+formFileName(name)))
			default:
				args = append(args, "--form-string "+Quote(part.Name+"="+part.Value))
			}
		}
	} else if req.Body != "" {
		args = append(args, "--data-raw "+Quote(req.Body))
	}

	sep := " "
	if e.multiline {
		sep = " \\\n  "
	}
	steps = append(steps, strings.Join(args, sep))
	return strings.Join(steps, " && ")
}

// Export renders req with default options.
func Export(req *runner.ResolvedRequest) string {
	return NewExporter().Export(req)
}

var formEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// formFileName double-quotes a path inside a -F value so curl does not read
// ';' or ',' in it as the start of form options.
func formFileName(path string) string {
	return `"` + formEscaper.Replace(path) + `"`
}

// Quote wraps s in single quotes for POSIX shells.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
