package env

import (
	"sort"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
)

// Variables is the flat name to value store of a loaded collection.
// It is populated once at load time and only read afterwards.
type Variables map[string]string

// NewVariables indexes vars by name. Later definitions win.
func NewVariables(vars []*parser.Variable) Variables {
	v := make(Variables, len(vars))
	for _, variable := range vars {
		v[variable.Name] = variable.Value
	}
	return v
}

func (v Variables) Get(name string) (string, bool) {
	value, ok := v[name]
	return value, ok
}

// Hooks is the registry of macro invocations by hook name.
type Hooks map[string]*parser.Hook

// NewHooks indexes hooks by name. Later definitions win.
func NewHooks(hooks []*parser.Hook) Hooks {
	h := make(Hooks, len(hooks))
	for _, hook := range hooks {
		h[hook.Name] = hook
	}
	return h
}

func (h Hooks) Get(name string) (*parser.Hook, bool) {
	hook, ok := h[name]
	return hook, ok
}

// Names returns the hook names in lexical order.
func (h Hooks) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
