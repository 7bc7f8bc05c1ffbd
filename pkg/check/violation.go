package check

import (
	"sort"

	"github.com/depfence-dev/depfence/pkg/label"
)

// Violation is a real dependency edge permitted by neither the group
// relation nor an exception. FromGroups and ToGroups record the endpoint
// memberships at check time so the report can name the boundary that was
// crossed; either may be empty for targets outside every group.
type Violation struct {
	From       label.Label
	To         label.Label
	FromGroups []string
	ToGroups   []string
}

// sortAndDedupe orders violations by (from, to) and drops duplicate
// pairs. The order is independent of input edge order and worker count,
// which keeps CI output byte-stable across runs on identical graphs.
func sortAndDedupe(violations []Violation) []Violation {
	sort.Slice(violations, func(i, j int) bool {
		if c := label.Compare(violations[i].From, violations[j].From); c != 0 {
			return c < 0
		}
		return label.Compare(violations[i].To, violations[j].To) < 0
	})
	out := violations[:0]
	for _, v := range violations {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.From == v.From && last.To == v.To {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
