package runner

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/macro"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/abdul-hamid-achik/lazyreq/packages/http"
	"go.uber.org/zap"
)

// ResolvedRequest is a request with every token substituted.
type ResolvedRequest struct {
	ID     string
	Method string
	URL    string
	// Headers keeps definition order; defaults come first.
	Headers []*parser.Header
	Body    string
	// Parts have their values resolved and local paths made absolute.
	Parts []*parser.MultipartPart
}

// Header returns the value of key, compared case-insensitively.
func (r *ResolvedRequest) Header(key string) (string, bool) {
	for i := len(r.Headers) - 1; i >= 0; i-- {
		if strings.EqualFold(r.Headers[i].Key, key) {
			return r.Headers[i].Value, true
		}
	}
	return "", false
}

func (r *ResolvedRequest) IsMultipart() bool {
	return len(r.Parts) > 0
}

func (r *Runner) resolve(ctx context.Context, trail *macro.Trail, req *parser.Request) (*ResolvedRequest, error) {
	resolve := func(s string) (string, error) {
		return r.templates.Resolve(ctx, trail, s)
	}

	url, err := resolve(req.URL)
	if err != nil {
		return nil, err
	}

	method := http.NormalizeMethod(req.Method)
	if !http.IsKnownMethod(req.Method) {
		r.logger.Debug("unknown method sent as GET", zap.String("request", req.ID), zap.String("method", req.Method))
	}

	out := &ResolvedRequest{
		ID:     req.ID,
		Method: method,
		URL:    url,
	}

	multipart := len(req.Multipart) > 0
	headers := newHeaderSet(r.defaultHeaders)
	for _, h := range req.Headers {
		value, err := resolve(h.Value)
		if err != nil {
			return nil, err
		}
		headers.set(h.Key, value, h.Line)
	}
	if multipart {
		// the transport sets the multipart boundary header
		headers.del("Content-Type")
	}
	out.Headers = headers.list

	if out.Body, err = resolve(req.Body); err != nil {
		return nil, err
	}

	for _, part := range req.Multipart {
		value, err := resolve(part.Value)
		if err != nil {
			return nil, err
		}
		if part.Source == parser.SourceLocalFile && !filepath.IsAbs(value) {
			value = filepath.Join(r.baseDir, value)
		}
		out.Parts = append(out.Parts, &parser.MultipartPart{
			Name:   part.Name,
			Source: part.Source,
			Value:  value,
			Line:   part.Line,
		})
	}

	return out, nil
}

type headerSet struct {
	list []*parser.Header
}

func newHeaderSet(defaults map[string]string) *headerSet {
	s := &headerSet{}
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		s.set(k, defaults[k], 0)
	}
	return s
}

// set replaces an existing header with the same name in place.
func (s *headerSet) set(key, value string, line int) {
	for _, h := range s.list {
		if strings.EqualFold(h.Key, key) {
			h.Key, h.Value, h.Line = key, value, line
			return
		}
	}
	s.list = append(s.list, &parser.Header{Key: key, Value: value, Line: line})
}

func (s *headerSet) del(key string) {
	kept := s.list[:0]
	for _, h := range s.list {
		if !strings.EqualFold(h.Key, key) {
			kept = append(kept, h)
		}
	}
	s.list = kept
}
