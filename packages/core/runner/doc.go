// Package runner executes requests of a parsed .lreq file.
//
// It provides functionality for:
//   - Resolving the URL, headers, body and multipart parts of a request
//   - Executing hooks as macros, recursively, through the same pipeline
//   - Reading local files and downloading remote files for multipart parts
//   - Dispatching the resolved request through a pluggable Transport
//
// Execution is sequential and depth first: a request blocks while the
// macros it references run. Cancelling the context aborts the whole chain.
package runner
