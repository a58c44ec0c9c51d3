package parser

import "fmt"

// Validate reports problems a successful parse cannot catch on its own:
// hooks that target an undefined request and hook names defined twice.
// Every returned error is a *ParseError.
func Validate(f *File) []error {
	var problems []error

	seen := make(map[string]int, len(f.Hooks))
	for _, hook := range f.Hooks {
		if line, ok := seen[hook.Name]; ok {
			problems = append(problems, &ParseError{
				File:    f.Path,
				Line:    hook.Line,
				Message: fmt.Sprintf("duplicate hook (first defined on line %d)", line),
				Snippet: hook.Name,
			})
		} else {
			seen[hook.Name] = hook.Line
		}

		if f.Request(hook.RequestID) == nil {
			problems = append(problems, &ParseError{
				File:    f.Path,
				Line:    hook.Line,
				Message: "hook " + hook.Name + " references unknown request",
				Snippet: hook.RequestID,
			})
		}
	}

	return problems
}
