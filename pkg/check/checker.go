// Package check evaluates every edge of a loaded dependency graph
// against a policy and collects the violations.
//
// Checking is a pure function over immutable inputs: the policy, the
// registry, and the graph are read-only for the run, so edge checks fan
// out across workers with no shared mutable state. Partial results merge
// into one deterministically sorted report.
package check

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/depfence-dev/depfence/pkg/depgraph"
	"github.com/depfence-dev/depfence/pkg/policy"
)

// Options tune a single run.
type Options struct {
	// Jobs is the number of concurrent edge-checking workers. Zero or
	// negative means GOMAXPROCS.
	Jobs int
}

// Result is the outcome of checking one graph against one policy.
type Result struct {
	// Violations, sorted by (from, to) and deduplicated by that pair.
	Violations []Violation
	// Advisories about the policy itself. Never gate the run.
	Advisories []Advisory

	Targets int
	Edges   int
}

// OK reports whether the run found no violations.
func (r *Result) OK() bool { return len(r.Violations) == 0 }

type partial struct {
	violations []Violation
	used       map[*policy.Exception]struct{}
}

// Check evaluates every edge in g against pol.
//
// An edge is permitted when its endpoints share a package, when any
// (fromGroup, toGroup) membership pair has an allow edge, or when an
// exception names it. Multi-group membership is permissive: any one
// group's rights cover the edge. Everything else is a violation, and the
// whole graph is always checked so one run surfaces every problem.
func Check(ctx context.Context, pol *policy.Policy, g *depgraph.Graph, opts Options) (*Result, error) {
	edges := g.Edges()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(edges) {
		jobs = len(edges)
	}

	parts := make([]partial, jobs)
	eg, ctx := errgroup.WithContext(ctx)
	for w := range parts {
		lo := w * len(edges) / jobs
		hi := (w + 1) * len(edges) / jobs
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			part := &parts[w]
			part.used = make(map[*policy.Exception]struct{})
			for _, e := range edges[lo:hi] {
				evalEdge(pol, g, e, part)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var violations []Violation
	used := make(map[*policy.Exception]struct{})
	for _, part := range parts {
		violations = append(violations, part.violations...)
		for exc := range part.used {
			used[exc] = struct{}{}
		}
	}

	return &Result{
		Violations: sortAndDedupe(violations),
		Advisories: buildAdvisories(pol, used),
		Targets:    g.NumTargets(),
		Edges:      g.NumEdges(),
	}, nil
}

func evalEdge(pol *policy.Policy, g *depgraph.Graph, e depgraph.Edge, part *partial) {
	// Intra-package dependencies are not governed.
	if e.From.SamePackage(e.To) {
		return
	}

	from, _ := g.Target(e.From)
	to, _ := g.Target(e.To)
	for _, fg := range from.Groups {
		for _, tg := range to.Groups {
			if pol.IsPermitted(fg, tg) {
				return
			}
		}
	}

	if exc, ok := pol.Exempted(e.From, e.To); ok {
		part.used[exc] = struct{}{}
		return
	}

	part.violations = append(part.violations, Violation{
		From:       e.From,
		To:         e.To,
		FromGroups: from.Groups,
		ToGroups:   to.Groups,
	})
}
