package template

import (
	"iter"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\$\$?[\w.]+`)

// Match is one token found in a template.
type Match struct {
	Start, End int
	Text       string
	// Escaped is set for "$$name" tokens.
	Escaped bool
}

// Literal is the text an escaped match renders as.
func (m Match) Literal() string {
	return m.Text[1:]
}

// Name is the first dot segment after the dollar sign.
func (m Match) Name() string {
	name, _, _ := strings.Cut(strings.TrimPrefix(m.Text, "$"), ".")
	return name
}

// Path is the list of dot segments after the name.
func (m Match) Path() []string {
	_, rest, ok := strings.Cut(strings.TrimPrefix(m.Text, "$"), ".")
	if !ok {
		return nil
	}
	return strings.Split(rest, ".")
}

// Scan yields the tokens of input from left to right. Trailing dots are not
// part of a token, so "Hello $name." ends the token at "name", unless the
// token is made of dots only ("$." stays a token and fails to resolve). The
// sequence can be ranged over any number of times.
func Scan(input string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, loc := range tokenPattern.FindAllStringIndex(input, -1) {
			text := input[loc[0]:loc[1]]
			if trimmed := strings.TrimRight(text, "."); strings.Trim(trimmed, "$") != "" {
				text = trimmed
			}
			m := Match{
				Start:   loc[0],
				End:     loc[0] + len(text),
				Text:    text,
				Escaped: strings.HasPrefix(text, "$$"),
			}
			if !yield(m) {
				return
			}
		}
	}
}

// HasTokens reports whether input contains anything to resolve.
func HasTokens(input string) bool {
	return tokenPattern.MatchString(input)
}
