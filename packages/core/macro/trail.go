package macro

import (
	"strings"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/pkg/errors"
)

// DefaultMaxDepth bounds macro nesting when no limit is configured.
const DefaultMaxDepth = 16

// Trail is the chain of request ids currently being executed, outermost
// first. Trails are immutable; Enter returns a new one.
type Trail struct {
	ids      []string
	maxDepth int
}

// NewTrail returns an empty trail. A maxDepth below one uses DefaultMaxDepth.
func NewTrail(maxDepth int) *Trail {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Trail{maxDepth: maxDepth}
}

// Enter returns the trail extended with id.
func (t *Trail) Enter(id string) (*Trail, error) {
	for _, seen := range t.ids {
		if seen == id {
			chain := append(append([]string{}, t.ids...), id)
			return nil, errs.New(errs.ErrCycleDetected, strings.Join(chain, " -> "), nil)
		}
	}
	if len(t.ids) >= t.maxDepth {
		return nil, errs.New(errs.ErrCycleDetected, id,
			errors.Errorf("macro nesting deeper than %d", t.maxDepth))
	}

	ids := make([]string, len(t.ids)+1)
	copy(ids, t.ids)
	ids[len(t.ids)] = id
	return &Trail{ids: ids, maxDepth: t.maxDepth}, nil
}

func (t *Trail) Depth() int {
	return len(t.ids)
}

// Current returns the innermost request id, or "" for an empty trail.
func (t *Trail) Current() string {
	if len(t.ids) == 0 {
		return ""
	}
	return t.ids[len(t.ids)-1]
}

func (t *Trail) String() string {
	return strings.Join(t.ids, " -> ")
}
