// Package cmd implements the lazyreq CLI commands using Cobra.
//
// Available commands:
//   - run: Resolve and send one request (also the root form: lazyreq <file> <id>)
//   - list: Display the requests and hooks defined in files
//   - validate: Check definition files without executing them
//   - cache: Inspect, prune or clear the macro cache
//   - init: Create an example .lreq file and config
//   - version: Show lazyreq version information
//
// Commands exit with the codes in exitcodes.go so scripts can tell a bad
// definition from an unresolved token or a network failure.
package cmd
