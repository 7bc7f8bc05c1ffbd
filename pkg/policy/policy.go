// Package policy implements the dependency policy for a monorepo build
// graph: named package groups, the directed may-depend-on relation
// between them, and per-target exceptions.
//
// The relation is default-deny and deliberately non-transitive: allow
// edges A->B and B->C do not imply A->C. Each pairwise permission must
// be explicit, so inserting a new group between existing layers never
// widens anyone's rights silently.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/depfence-dev/depfence/pkg/label"
)

// Edge is a declared permission: targets in From may depend on targets
// in To.
type Edge struct {
	From string
	To   string
}

// Exception permits one specific edge that policy would otherwise deny.
// Exactly one of Target and Package is set: Target names one target,
// Package (a bare path) covers any target in that single package.
// Exceptions are additive only; they never revoke a permitted edge.
type Exception struct {
	From      label.Label
	Target    label.Label
	Package   string
	Rationale string
}

// Dest returns the exception's destination as written, for display.
func (e *Exception) Dest() string {
	if e.Package != "" {
		return "//" + e.Package
	}
	return e.Target.String()
}

type exceptionKey struct {
	from string
	dest string
}

// Policy is the immutable per-run policy: the group registry, the allow
// edges, and the exception catalogue. Construct with New, populate with
// Allow/AddException during loading, then treat as read-only.
type Policy struct {
	Registry *Registry

	// SourceFile is the policy file the model was loaded from, used in
	// remediation text. Empty for programmatically built policies.
	SourceFile string

	edges      map[Edge]struct{}
	exceptions map[exceptionKey]*Exception
	order      []*Exception
}

// New returns an empty policy over the given registry.
func New(reg *Registry) *Policy {
	return &Policy{
		Registry:   reg,
		edges:      make(map[Edge]struct{}),
		exceptions: make(map[exceptionKey]*Exception),
	}
}

// Allow registers a may-depend-on edge between two registered groups.
// Registering the same edge twice is a no-op. A group may allow itself.
func (p *Policy) Allow(from, to string) error {
	for _, name := range []string{from, to} {
		if _, ok := p.Registry.Group(name); !ok {
			return &ConfigError{
				Entry: fmt.Sprintf("allow %s -> %s", from, to),
				Err:   fmt.Errorf("%w %q", ErrUnknownGroup, name),
			}
		}
	}
	p.edges[Edge{From: from, To: to}] = struct{}{}
	return nil
}

// IsPermitted reports whether from may depend on to. This is a direct
// lookup: no transitive closure over groups.
func (p *Policy) IsPermitted(from, to string) bool {
	_, ok := p.edges[Edge{From: from, To: to}]
	return ok
}

// Edges returns the allow edges sorted by (From, To).
func (p *Policy) Edges() []Edge {
	out := make([]Edge, 0, len(p.edges))
	for e := range p.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// AddException registers a per-target override. from must be an exact
// target label; to is either an exact target label (contains a colon)
// or a single package path. Wildcards are rejected in both positions:
// exceptions are keyed by exact identity so they cannot silently erode
// the policy. The rationale must not be blank.
func (p *Policy) AddException(from, to, rationale string) error {
	entry := fmt.Sprintf("exception %s -> %s", from, to)

	if strings.TrimSpace(rationale) == "" {
		return &ConfigError{Entry: entry, Err: ErrEmptyRationale}
	}

	fromLabel, err := label.Parse(from)
	if err != nil {
		return &ConfigError{Entry: entry, Err: err}
	}

	exc := &Exception{From: fromLabel, Rationale: rationale}
	switch {
	case strings.Contains(to, "..."):
		return &ConfigError{Entry: entry, Err: fmt.Errorf("wildcard exceptions are not allowed")}
	case strings.ContainsRune(to, ':'):
		t, err := label.Parse(to)
		if err != nil {
			return &ConfigError{Entry: entry, Err: err}
		}
		exc.Target = t
	case strings.HasPrefix(to, "//"):
		pat, err := ParsePattern(to)
		if err != nil {
			return &ConfigError{Entry: entry, Err: err}
		}
		exc.Package = pat.prefix
	default:
		return &ConfigError{Entry: entry, Err: fmt.Errorf("destination must be a target label or package path, not a group name")}
	}

	key := exceptionKey{from: fromLabel.String(), dest: exc.Dest()}
	if _, ok := p.exceptions[key]; ok {
		return &ConfigError{Entry: entry, Err: fmt.Errorf("duplicate exception")}
	}
	p.exceptions[key] = exc
	p.order = append(p.order, exc)
	return nil
}

// Exceptions returns the exceptions in declaration order.
func (p *Policy) Exceptions() []*Exception {
	return p.order
}

// Exempted returns the exception covering the real edge (from, to), if
// any. An exception matches on (from, to) exactly or on
// (from, package of to) exactly.
func (p *Policy) Exempted(from, to label.Label) (*Exception, bool) {
	if e, ok := p.exceptions[exceptionKey{from: from.String(), dest: to.String()}]; ok {
		return e, true
	}
	if e, ok := p.exceptions[exceptionKey{from: from.String(), dest: to.PackagePath()}]; ok {
		return e, true
	}
	return nil, false
}

// Cycle returns one cycle in the group-level allow graph, as a path of
// group names whose first and last elements are equal, or nil if the
// graph is acyclic. Self-edges are legal and ignored. A cycle makes the
// layering rationale vacuous, so callers surface it as an advisory
// warning; it is never a violation.
func (p *Policy) Cycle() []string {
	adj := make(map[string][]string)
	for e := range p.edges {
		if e.From == e.To {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}
	names := make([]string, 0, len(adj))
	for name := range adj {
		sort.Strings(adj[name])
		names = append(names, name)
	}
	sort.Strings(names)

	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	parent := make(map[string]string)

	var cycle []string
	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		recStack[name] = true
		for _, next := range adj[name] {
			if !visited[next] {
				parent[next] = name
				if dfs(next) {
					return true
				}
			} else if recStack[next] {
				cycle = []string{next}
				for curr := name; curr != next; curr = parent[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}
		recStack[name] = false
		return false
	}

	for _, name := range names {
		if !visited[name] {
			if dfs(name) {
				return cycle
			}
		}
	}
	return nil
}
