package check

import (
	"fmt"
	"strings"

	"github.com/depfence-dev/depfence/pkg/policy"
)

// Advisory codes. Advisories flag policy hygiene problems that do not
// gate the run.
const (
	// AdvisoryPolicyCycle: the group-level allow relation contains a
	// cycle, so the layering between those groups is not directional.
	AdvisoryPolicyCycle = "policy-cycle"
	// AdvisoryUnusedException: an exception matched no edge in the
	// checked graph, either because the edge is gone or because an allow
	// edge already covers it.
	AdvisoryUnusedException = "unused-exception"
)

// Advisory is a non-gating warning about the policy itself.
type Advisory struct {
	Code    string
	Message string
}

// buildAdvisories derives the advisory list for one run: at most one
// policy-cycle advisory, then unused exceptions in declaration order.
func buildAdvisories(pol *policy.Policy, used map[*policy.Exception]struct{}) []Advisory {
	var out []Advisory
	if cyc := pol.Cycle(); cyc != nil {
		out = append(out, Advisory{
			Code:    AdvisoryPolicyCycle,
			Message: fmt.Sprintf("allow edges form a cycle (%s); layering between these groups is not directional", strings.Join(cyc, " -> ")),
		})
	}
	for _, exc := range pol.Exceptions() {
		if _, ok := used[exc]; ok {
			continue
		}
		out = append(out, Advisory{
			Code:    AdvisoryUnusedException,
			Message: fmt.Sprintf("exception %s -> %s (%s) matched no edge", exc.From, exc.Dest(), exc.Rationale),
		})
	}
	return out
}
