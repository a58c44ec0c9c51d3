package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// hookSpec is the grammar of a HOOKS value: "$req.<requestId> [ttlSeconds]".
type hookSpec struct {
	Ref *macroRef `parser:"@Macro"`
	TTL *string   `parser:"@Int?"`
}

type macroRef string

// Capture strips the "$req." prefix so only the request id is kept.
func (m *macroRef) Capture(values []string) error {
	*m = macroRef(strings.TrimPrefix(values[0], MacroPrefix))
	return nil
}

var hookLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Macro", Pattern: `\$req\.\S+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Other", Pattern: `\S+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var hookParser = participle.MustBuild[hookSpec](
	participle.Lexer(hookLexer),
	participle.Elide("Whitespace"),
)

// ParseHookSpec parses the invocation spec of the hook called name.
// A spec without a TTL produces a hook that is never cached.
func ParseHookSpec(name, spec string) (*Hook, error) {
	parsed, err := hookParser.ParseString("", strings.TrimSpace(spec))
	if err != nil {
		return nil, errors.Wrap(err, "expected \"$req.<id> [ttl]\"")
	}

	hook := &Hook{
		Name:      name,
		RequestID: string(*parsed.Ref),
	}

	if parsed.TTL != nil {
		seconds, err := strconv.ParseUint(*parsed.TTL, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ttl %q", *parsed.TTL)
		}
		hook.TTL = time.Duration(seconds) * time.Second
		hook.Cacheable = true
	}

	return hook, nil
}
