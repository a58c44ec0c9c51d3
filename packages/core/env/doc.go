// Package env holds the read-only lookup tables of a loaded collection.
//
// It provides:
//   - Variables: name to literal value
//   - Hooks: hook name to macro invocation
//   - Loading .env files into the process environment so "$env.NAME"
//     variables can be served from them
package env
