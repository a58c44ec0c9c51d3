package parser

import (
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
)

type File struct {
	Path      string
	Variables []*Variable
	Hooks     []*Hook
	Requests  []*Request
}

// Request returns the request definition with the given id, or nil.
func (f *File) Request(id string) *Request {
	for _, req := range f.Requests {
		if req.ID == id {
			return req
		}
	}
	return nil
}

type Variable struct {
	Name  string
	Value string
	Line  int
}

// Hook binds a name to a macro invocation: executing RequestID and, when
// Cacheable is set, keeping the raw result for TTL.
type Hook struct {
	Name      string
	RequestID string
	TTL       time.Duration
	Cacheable bool
	Line      int
}

// Spec renders the hook back into its "$req.<id> [ttl]" form.
func (h *Hook) Spec() string {
	s := MacroPrefix + h.RequestID
	if h.Cacheable {
		s += " " + strconv.FormatInt(int64(h.TTL/time.Second), 10)
	}
	return s
}

type Request struct {
	ID        string
	Method    string
	URL       string
	Headers   []*Header
	Body      string
	Multipart []*MultipartPart
	Line      int
}

type Header struct {
	Key   string
	Value string
	Line  int
}

type MultipartPart struct {
	Name   string
	Source SourceType
	// Value is the inline text, the local path or the download URL,
	// depending on Source.
	Value string
	Line  int
}

type SourceType int

const (
	SourceInline SourceType = iota
	SourceLocalFile
	SourceRemoteDownload
)

const (
	FilePrefix     = "file://"
	DownloadPrefix = "download://"
	MacroPrefix    = "$req."
	EnvPrefix      = "$env."
)

func (s SourceType) String() string {
	switch s {
	case SourceInline:
		return "inline"
	case SourceLocalFile:
		return "file"
	case SourceRemoteDownload:
		return "download"
	default:
		return "unknown"
	}
}

// Raw renders the part content back into its directive form.
func (p *MultipartPart) Raw() string {
	switch p.Source {
	case SourceLocalFile:
		return FilePrefix + p.Value
	case SourceRemoteDownload:
		return DownloadPrefix + p.Value
	default:
		return p.Value
	}
}

// ParseError describes a malformed directive. It matches
// errs.ErrInvalidDefinition under errors.Is.
type ParseError struct {
	File    string
	Line    int
	Message string
	Snippet string
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Snippet != "" {
		msg += " " + strconv.Quote(e.Snippet)
	}
	if e.File != "" {
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + msg
	}
	return "line " + strconv.Itoa(e.Line) + ": " + msg
}

func (e *ParseError) Unwrap() error {
	return errs.ErrInvalidDefinition
}
