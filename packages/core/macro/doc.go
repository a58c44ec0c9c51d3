// Package macro executes hook invocations.
//
// A hook binds a name to a request id and an optional TTL. Resolving a hook
// runs the referenced request through the runner (which may itself resolve
// further hooks), optionally serving or storing the raw result through the
// macro cache, then extracts a value from the JSON result by dotted path.
//
// Recursion is bounded by a Trail: every macro execution enters the request
// id it runs, and entering an id already on the trail, or going deeper than
// the configured maximum, fails with errs.ErrCycleDetected.
package macro
