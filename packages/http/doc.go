// Package http is the transport used by lazyreq to dispatch resolved
// requests.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts, redirects, TLS verification and proxy
//   - Default headers applied before request headers
//   - Multipart form encoding for text fields and in-memory files
//   - Content type inference for uploaded files
package http
