package macro

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/cache"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"go.uber.org/zap"
)

// Executor runs a request by id and returns its response body. The runner
// implements it; the trail passed in already excludes requestID.
type Executor interface {
	HasRequest(id string) bool
	ExecuteMacro(ctx context.Context, trail *Trail, requestID string) (string, error)
}

// Resolver turns a hook token into its substitution value.
type Resolver struct {
	exec     Executor
	cache    *cache.Cache
	sourceID string
	logger   *zap.Logger
}

type Option func(*Resolver)

// WithCache enables caching for hooks that carry a TTL. sourceID identifies
// the definition file the hooks come from.
func WithCache(c *cache.Cache, sourceID string) Option {
	return func(r *Resolver) {
		r.cache = c
		r.sourceID = sourceID
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(exec Executor, opts ...Option) *Resolver {
	r := &Resolver{
		exec:   exec,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve executes hook (or reads its cached result) and extracts path from
// the result. token is the full original token, used in error messages.
func (r *Resolver) Resolve(ctx context.Context, trail *Trail, token string, hook *parser.Hook, path []string) (string, error) {
	if !r.exec.HasRequest(hook.RequestID) {
		return "", errs.New(errs.ErrMacroNotFound, hook.Name+" -> "+parser.MacroPrefix+hook.RequestID, nil)
	}

	raw, err := r.result(ctx, trail, hook)
	if err != nil {
		return "", err
	}
	return Extract(token, raw, path)
}

func (r *Resolver) result(ctx context.Context, trail *Trail, hook *parser.Hook) (string, error) {
	log := r.logger.With(zap.String("hook", hook.Name), zap.String("request", hook.RequestID))
	caching := hook.Cacheable && r.cache != nil

	if caching {
		if value, ok := r.cache.Get(ctx, r.sourceID, hook.RequestID); ok {
			log.Debug("macro served from cache")
			return value, nil
		}
	}

	start := time.Now()
	raw, err := r.exec.ExecuteMacro(ctx, trail, hook.RequestID)
	if err != nil {
		return "", err
	}
	log.Debug("macro executed", zap.Duration("duration", time.Since(start)), zap.Int("depth", trail.Depth()))

	if caching {
		if err := r.cache.Set(ctx, r.sourceID, hook.RequestID, raw, hook.TTL); err != nil {
			log.Warn("failed to cache macro result", zap.Error(err))
		}
	}
	return raw, nil
}
