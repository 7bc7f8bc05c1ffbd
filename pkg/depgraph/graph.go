// Package depgraph models the real build dependency graph consumed from
// an external build-graph query. The graph is loaded once per run,
// resolved against the policy's known-package universe, and immutable
// afterwards.
package depgraph

import (
	"sort"

	"github.com/depfence-dev/depfence/pkg/label"
)

// Target is one buildable unit together with the package groups that
// contain it. Group names are sorted. Never mutated after load.
type Target struct {
	Label  label.Label
	Groups []string
}

// Edge is one real dependency: From depends on To.
type Edge struct {
	From label.Label
	To   label.Label
}

// Graph is the loaded dependency graph: the target table (with each
// target's group memberships) plus the raw edge list, in input order and
// including any duplicates the build tool emitted.
type Graph struct {
	targets map[label.Label]*Target
	edges   []Edge
}

// Target looks up a target by label.
func (g *Graph) Target(l label.Label) (*Target, bool) {
	t, ok := g.targets[l]
	return t, ok
}

// Targets returns all targets sorted by label.
func (g *Graph) Targets() []*Target {
	out := make([]*Target, 0, len(g.targets))
	for _, t := range g.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return label.Compare(out[i].Label, out[j].Label) < 0
	})
	return out
}

// Edges returns the raw edge list in input order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// NumTargets returns the number of distinct targets.
func (g *Graph) NumTargets() int { return len(g.targets) }

// NumEdges returns the number of raw edges, duplicates included.
func (g *Graph) NumEdges() int { return len(g.edges) }
