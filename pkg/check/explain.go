package check

import (
	"fmt"

	"github.com/depfence-dev/depfence/pkg/label"
	"github.com/depfence-dev/depfence/pkg/policy"
)

// Verdict classifies a single edge against the policy.
type Verdict string

const (
	// VerdictPermitted means a group pair's allow edge covers the edge,
	// or the endpoints share a package.
	VerdictPermitted Verdict = "permitted"
	// VerdictExempted means no allow edge covers the edge but an
	// exception names it.
	VerdictExempted Verdict = "exempted"
	// VerdictForbidden means nothing permits the edge.
	VerdictForbidden Verdict = "forbidden"
)

// Explanation is the full story of one edge: the verdict and the rule
// that produced it.
type Explanation struct {
	From       label.Label
	To         label.Label
	FromGroups []string
	ToGroups   []string
	Verdict    Verdict
	// Reason names the deciding rule in words.
	Reason string
}

// Explain evaluates the single edge (from, to) against pol and reports
// which rule decides it. The decision order matches Check exactly, so
// an edge an exception covers redundantly explains as permitted, not
// exempted.
//
// Both endpoints must resolve against the policy's known packages;
// an unresolved endpoint is an error, as it would be during a load.
func Explain(pol *policy.Policy, from, to label.Label) (*Explanation, error) {
	reg := pol.Registry
	for _, l := range []label.Label{from, to} {
		if _, ok := reg.ResolvePackage(l.Pkg); !ok {
			return nil, fmt.Errorf("target %s: package %s matches no known package path", l, l.PackagePath())
		}
	}

	exp := &Explanation{
		From:       from,
		To:         to,
		FromGroups: groupNames(reg, from.Pkg),
		ToGroups:   groupNames(reg, to.Pkg),
	}

	if from.SamePackage(to) {
		exp.Verdict = VerdictPermitted
		exp.Reason = fmt.Sprintf("both targets live in package %s", from.PackagePath())
		return exp, nil
	}

	// Group lists are sorted, so the first witnessing pair is stable.
	for _, fg := range exp.FromGroups {
		for _, tg := range exp.ToGroups {
			if pol.IsPermitted(fg, tg) {
				exp.Verdict = VerdictPermitted
				exp.Reason = fmt.Sprintf("allow edge %s -> %s", fg, tg)
				return exp, nil
			}
		}
	}

	if exc, ok := pol.Exempted(from, to); ok {
		exp.Verdict = VerdictExempted
		exp.Reason = fmt.Sprintf("exception %s -> %s (%s)", exc.From, exc.Dest(), exc.Rationale)
		return exp, nil
	}

	exp.Verdict = VerdictForbidden
	exp.Reason = "no allow edge covers any group pair and no exception names this edge"
	return exp, nil
}

func groupNames(reg *policy.Registry, pkg string) []string {
	groups := reg.GroupsContaining(pkg)
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}
