// Package output prints request results.
//
// Supported output formats:
//   - Console: the "[METHOD] url" line, the status and the body, with JSON
//     bodies pretty printed and coloured
//   - JSON: one machine-readable object per result
package output
