package runner

import (
	"context"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/cache"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/env"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/macro"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/template"
	"github.com/abdul-hamid-achik/lazyreq/packages/http"
	"go.uber.org/zap"
)

// Transport sends a fully resolved request. *http.Client implements it.
type Transport interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type Runner struct {
	file           *parser.File
	sourceID       string
	baseDir        string
	transport      Transport
	cache          *cache.Cache
	logger         *zap.Logger
	maxDepth       int
	defaultHeaders map[string]string
	templates      *template.Resolver
}

type Option func(*Runner)

func WithTransport(t Transport) Option {
	return func(r *Runner) {
		r.transport = t
	}
}

// WithCache enables the macro cache for hooks with a TTL. A nil cache
// disables caching.
func WithCache(c *cache.Cache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMaxDepth bounds macro nesting. Values below one use macro.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Runner) {
		r.maxDepth = depth
	}
}

// WithDefaultHeaders sets headers sent with every request unless the request
// defines them itself.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(r *Runner) {
		for k, v := range headers {
			r.defaultHeaders[k] = v
		}
	}
}

// New returns a runner for file. Without WithTransport requests go through a
// default http.Client.
func New(file *parser.File, opts ...Option) *Runner {
	r := &Runner{
		file:           file,
		sourceID:       sourceID(file.Path),
		baseDir:        filepath.Dir(file.Path),
		logger:         zap.NewNop(),
		maxDepth:       macro.DefaultMaxDepth,
		defaultHeaders: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.transport == nil {
		r.transport = http.NewClient()
	}

	macroOpts := []macro.Option{macro.WithLogger(r.logger)}
	if r.cache != nil {
		macroOpts = append(macroOpts, macro.WithCache(r.cache, r.sourceID))
	}
	macros := macro.NewResolver(r, macroOpts...)
	r.templates = template.NewResolver(env.NewVariables(file.Variables), env.NewHooks(file.Hooks), macros)

	return r
}

// sourceID identifies a definition file in cache keys.
func sourceID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (r *Runner) File() *parser.File {
	return r.file
}

// Result is the outcome of one top-level request.
type Result struct {
	RequestID string
	Request   *ResolvedRequest
	Response  *http.Response
	Duration  time.Duration
}

// Run resolves and dispatches the request with the given id.
func (r *Runner) Run(ctx context.Context, id string) (*Result, error) {
	req, trail, err := r.enter(id)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, trail, req)
}

// Resolve substitutes every token of the request with the given id without
// dispatching it. Macros it references are still executed.
func (r *Runner) Resolve(ctx context.Context, id string) (*ResolvedRequest, error) {
	req, trail, err := r.enter(id)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, trail, req)
}

func (r *Runner) enter(id string) (*parser.Request, *macro.Trail, error) {
	req := r.file.Request(id)
	if req == nil {
		return nil, nil, errs.New(errs.ErrRequestNotFound, id, nil)
	}
	trail, err := macro.NewTrail(r.maxDepth).Enter(id)
	if err != nil {
		return nil, nil, err
	}
	return req, trail, nil
}

func (r *Runner) HasRequest(id string) bool {
	return r.file.Request(id) != nil
}

// ExecuteMacro runs the request referenced by a hook and returns its body.
// The status code is not checked: a macro yields whatever the server sent.
func (r *Runner) ExecuteMacro(ctx context.Context, trail *macro.Trail, requestID string) (string, error) {
	req := r.file.Request(requestID)
	if req == nil {
		return "", errs.New(errs.ErrMacroNotFound, requestID, nil)
	}

	child, err := trail.Enter(requestID)
	if err != nil {
		return "", err
	}

	result, err := r.execute(ctx, child, req)
	if err != nil {
		return "", err
	}
	if !result.Response.IsSuccess() {
		r.logger.Warn("macro request returned a failure status",
			zap.String("request", requestID),
			zap.Int("status", result.Response.StatusCode),
		)
	}
	return result.Response.BodyString(), nil
}

func (r *Runner) execute(ctx context.Context, trail *macro.Trail, req *parser.Request) (*Result, error) {
	resolved, err := r.resolve(ctx, trail, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := r.build(ctx, resolved)
	if err != nil {
		return nil, errs.New(errs.ErrExecution, req.ID, err)
	}

	log := r.logger.With(
		zap.String("request", req.ID),
		zap.String("method", resolved.Method),
		zap.String("url", resolved.URL),
		zap.Int("depth", trail.Depth()),
	)
	log.Debug("dispatching request")

	start := time.Now()
	resp, err := r.transport.Do(ctx, httpReq)
	if err != nil {
		return nil, errs.New(errs.ErrExecution, req.ID, errs.New(errs.ErrTransport, resolved.URL, err))
	}

	log.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Duration("duration", resp.Duration))

	return &Result{
		RequestID: req.ID,
		Request:   resolved,
		Response:  resp,
		Duration:  time.Since(start),
	}, nil
}
