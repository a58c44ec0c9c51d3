// Package parser loads .lreq request collections.
//
// A collection has three kinds of sections:
//   - VARS: name = value pairs; "$env.NAME" values are read from the process
//     environment and surrounding quotes are stripped
//   - HOOKS: name = "$req.<id> [ttlSeconds]" macro invocations
//   - ID: <name> blocks, each holding a "METHOD url" line, H:key=value header
//     lines, M:key=value multipart lines and a body made of the remaining lines
//
// Lines starting with # are comments. Malformed directives produce a
// *ParseError carrying the file and line.
package parser
