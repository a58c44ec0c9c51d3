package template

import (
	"context"
	"strings"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/env"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/macro"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
)

// MacroResolver resolves a hook token. *macro.Resolver implements it.
type MacroResolver interface {
	Resolve(ctx context.Context, trail *macro.Trail, token string, hook *parser.Hook, path []string) (string, error)
}

// Resolver resolves every token of a string.
type Resolver struct {
	vars   env.Variables
	hooks  env.Hooks
	macros MacroResolver
}

func NewResolver(vars env.Variables, hooks env.Hooks, macros MacroResolver) *Resolver {
	return &Resolver{vars: vars, hooks: hooks, macros: macros}
}

// Resolve returns input with every token substituted. Substituted values are
// not scanned again. A token that repeats within input is resolved once.
func (r *Resolver) Resolve(ctx context.Context, trail *macro.Trail, input string) (string, error) {
	if !HasTokens(input) {
		return input, nil
	}

	var (
		sb   strings.Builder
		last int
		seen = make(map[string]string)
	)
	for m := range Scan(input) {
		sb.WriteString(input[last:m.Start])
		last = m.End

		if m.Escaped {
			sb.WriteString(m.Literal())
			continue
		}

		value, ok := seen[m.Text]
		if !ok {
			var err error
			if value, err = r.token(ctx, trail, m); err != nil {
				return "", err
			}
			seen[m.Text] = value
		}
		sb.WriteString(value)
	}
	sb.WriteString(input[last:])

	return sb.String(), nil
}

func (r *Resolver) token(ctx context.Context, trail *macro.Trail, m Match) (string, error) {
	name := m.Name()

	if hook, ok := r.hooks.Get(name); ok {
		return r.macros.Resolve(ctx, trail, m.Text, hook, m.Path())
	}
	if value, ok := r.vars.Get(name); ok {
		return value, nil
	}
	if name == "" {
		return "", errs.New(errs.ErrUnresolvedToken, m.Text, nil)
	}
	return "", errs.New(errs.ErrUnresolvedToken, "$"+name, nil)
}
