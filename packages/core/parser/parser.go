package parser

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type section int

const (
	sectionVars section = iota
	sectionHooks
	sectionRequest
)

var knownMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Parser builds a File from the lines of a request collection.
type Parser struct {
	file      string
	lookupEnv func(string) (string, bool)

	section section
	current *Request
	body    strings.Builder
	result  *File
}

type Option func(*Parser)

// WithLookupEnv replaces os.LookupEnv for "$env.NAME" variable values.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(p *Parser) {
		p.lookupEnv = fn
	}
}

func NewParser(filename string, opts ...Option) *Parser {
	p := &Parser{
		file:      filename,
		lookupEnv: os.LookupEnv,
		result:    &File{Path: filename},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func ParseFile(path string, opts ...Option) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path, opts...)
}

func Parse(input, filename string, opts ...Option) (*File, error) {
	return NewParser(filename, opts...).Parse(input)
}

func (p *Parser) Parse(input string) (*File, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if err := p.processLine(lineNumber, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, p.errorf(lineNumber+1, "", "%v", err)
	}

	if err := p.finishRequest(); err != nil {
		return nil, err
	}
	return p.result, nil
}

func (p *Parser) processLine(num int, raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	switch {
	case isSectionMarker(line, "VARS"):
		if err := p.finishRequest(); err != nil {
			return err
		}
		p.section = sectionVars
		return nil
	case isSectionMarker(line, "HOOKS"):
		if err := p.finishRequest(); err != nil {
			return err
		}
		p.section = sectionHooks
		return nil
	case strings.HasPrefix(line, "ID:"):
		if err := p.finishRequest(); err != nil {
			return err
		}
		return p.startRequest(num, strings.TrimSpace(strings.TrimPrefix(line, "ID:")))
	}

	switch p.section {
	case sectionVars:
		return p.parseVariable(num, line)
	case sectionHooks:
		return p.parseHook(num, line)
	default:
		return p.parseRequestLine(num, line)
	}
}

func isSectionMarker(line, name string) bool {
	return line == name || line == name+":"
}

func (p *Parser) parseVariable(num int, line string) error {
	name, value, ok := splitAssignment(line)
	if !ok {
		return p.errorf(num, line, "invalid variable")
	}

	if strings.HasPrefix(value, EnvPrefix) {
		envName := strings.TrimPrefix(value, EnvPrefix)
		envValue, found := p.lookupEnv(envName)
		if !found {
			return p.errorf(num, line, "environment variable %s is not set", envName)
		}
		value = envValue
	}

	p.result.Variables = append(p.result.Variables, &Variable{
		Name:  name,
		Value: unquote(value),
		Line:  num,
	})
	return nil
}

func (p *Parser) parseHook(num int, line string) error {
	name, value, ok := splitAssignment(line)
	if !ok {
		return p.errorf(num, line, "invalid hook")
	}

	hook, err := ParseHookSpec(name, value)
	if err != nil {
		return p.errorf(num, line, "invalid hook %s: %v", name, err)
	}
	hook.Line = num

	p.result.Hooks = append(p.result.Hooks, hook)
	return nil
}

func (p *Parser) startRequest(num int, id string) error {
	if id == "" {
		return p.errorf(num, "", "request id is empty")
	}
	if existing := p.result.Request(id); existing != nil {
		return p.errorf(num, id, "duplicate request id (first defined on line %d)", existing.Line)
	}

	p.current = &Request{ID: id, Line: num}
	p.result.Requests = append(p.result.Requests, p.current)
	p.section = sectionRequest
	return nil
}

func (p *Parser) parseRequestLine(num int, line string) error {
	req := p.current

	if strings.HasPrefix(line, "H:") {
		key, value, ok := splitAssignment(strings.TrimPrefix(line, "H:"))
		if !ok {
			return p.errorf(num, line, "invalid header")
		}
		req.Headers = append(req.Headers, &Header{Key: key, Value: value, Line: num})
		return nil
	}

	if strings.HasPrefix(line, "M:") {
		name, value, ok := splitAssignment(strings.TrimPrefix(line, "M:"))
		if !ok {
			return p.errorf(num, line, "invalid multipart form")
		}
		source, content := classifyContent(value)
		req.Multipart = append(req.Multipart, &MultipartPart{
			Name:   name,
			Source: source,
			Value:  content,
			Line:   num,
		})
		return nil
	}

	if req.URL == "" {
		fields := strings.Fields(line)
		if isMethodToken(fields[0]) {
			if len(fields) == 2 {
				req.Method = fields[0]
				req.URL = fields[1]
				return nil
			}
			if knownMethods[fields[0]] {
				return p.errorf(num, line, "invalid request line")
			}
		}
	}

	p.body.WriteString(line)
	return nil
}

func (p *Parser) finishRequest() error {
	if p.current == nil {
		return nil
	}
	req := p.current
	p.current = nil

	req.Body = p.body.String()
	p.body.Reset()

	if req.URL == "" {
		return p.errorf(req.Line, req.ID, "request has no \"METHOD url\" line")
	}
	return nil
}

func (p *Parser) errorf(line int, snippet, format string, args ...any) error {
	return &ParseError{
		File:    p.file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Snippet: snippet,
	}
}

// splitAssignment splits "key = value" at the first '='.
func splitAssignment(line string) (string, string, bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func isMethodToken(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return s != ""
}

func classifyContent(content string) (SourceType, string) {
	switch {
	case strings.HasPrefix(content, DownloadPrefix):
		return SourceRemoteDownload, strings.TrimPrefix(content, DownloadPrefix)
	case strings.HasPrefix(content, FilePrefix):
		return SourceLocalFile, strings.TrimPrefix(content, FilePrefix)
	default:
		return SourceInline, content
	}
}
