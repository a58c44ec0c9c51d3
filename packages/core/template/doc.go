// Package template substitutes "$name" and "$name.path" tokens in request
// templates.
//
// A token names a hook or a variable. Hooks are looked up first and are
// resolved through the macro resolver with the dotted path that follows the
// name; variables replace the whole token with their value and ignore any
// path. "$$name" is an escape and renders as the literal "$name".
package template
