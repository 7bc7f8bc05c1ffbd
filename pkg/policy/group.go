package policy

import (
	"fmt"
	"sort"
	"strings"
)

// Group is a named, non-empty set of package path-patterns sharing a
// layering role. Groups may overlap: a package can belong to several
// groups at once.
type Group struct {
	Name      string
	Rationale string
	patterns  []Pattern
}

// Contains reports whether the group's pattern set matches the bare
// package path.
func (g *Group) Contains(pkg string) bool {
	return matchSet(g.patterns, pkg)
}

// Patterns returns the group's patterns as written, includes first.
func (g *Group) Patterns() []string {
	out := make([]string, 0, len(g.patterns))
	for _, p := range g.patterns {
		if !p.exclude {
			out = append(out, p.String())
		}
	}
	for _, p := range g.patterns {
		if p.exclude {
			out = append(out, p.String())
		}
	}
	return out
}

// Registry holds the package groups and the known-package universe.
// It is constructed once per run and immutable afterwards; nothing in it
// is mutated during checking.
type Registry struct {
	groups map[string]*Group
	// known is every include pattern from every group plus the explicit
	// package declarations. Target resolution is longest-prefix match
	// against this set.
	known []Pattern
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*Group)}
}

// RegisterGroup registers a named group. The name must be unique, the
// rationale non-blank, and the pattern set must contain at least one
// include pattern.
func (r *Registry) RegisterGroup(name, rationale string, patterns []string) (*Group, error) {
	if name == "" || strings.ContainsAny(name, " \t:/") {
		return nil, &ConfigError{Entry: fmt.Sprintf("group %q", name), Err: fmt.Errorf("invalid group name")}
	}
	if _, ok := r.groups[name]; ok {
		return nil, &ConfigError{Entry: "group " + name, Err: ErrDuplicateGroupName}
	}
	if strings.TrimSpace(rationale) == "" {
		return nil, &ConfigError{Entry: "group " + name, Err: ErrEmptyRationale}
	}

	g := &Group{Name: name, Rationale: rationale}
	includes := 0
	for _, raw := range patterns {
		p, err := ParsePattern(raw)
		if err != nil {
			return nil, &ConfigError{Entry: "group " + name, Err: err}
		}
		if !p.exclude {
			includes++
		}
		g.patterns = append(g.patterns, p)
	}
	if includes == 0 {
		return nil, &ConfigError{Entry: "group " + name, Err: ErrEmptyPatternSet}
	}

	r.groups[name] = g
	for _, p := range g.patterns {
		if !p.exclude {
			r.known = append(r.known, p)
		}
	}
	return g, nil
}

// RegisterPackages declares known-but-ungoverned package roots. Targets
// under them resolve without belonging to any group.
func (r *Registry) RegisterPackages(patterns []string) error {
	for _, raw := range patterns {
		p, err := ParsePattern(raw)
		if err != nil {
			return &ConfigError{Entry: "packages", Err: err}
		}
		if p.exclude {
			return &ConfigError{Entry: "packages", Err: fmt.Errorf("exclusion pattern %q not allowed here", raw)}
		}
		r.known = append(r.known, p)
	}
	return nil
}

// Group looks up a group by name.
func (r *Registry) Group(name string) (*Group, bool) {
	g, ok := r.groups[name]
	return g, ok
}

// Groups returns all groups sorted by name.
func (r *Registry) Groups() []*Group {
	out := make([]*Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GroupsContaining returns every group whose pattern set matches the bare
// package path, sorted by name. A package may be in zero, one, or many
// groups.
func (r *Registry) GroupsContaining(pkg string) []*Group {
	var out []*Group
	for _, g := range r.Groups() {
		if g.Contains(pkg) {
			out = append(out, g)
		}
	}
	return out
}

// ResolvePackage resolves a bare package path against the known-package
// universe by longest-prefix match. It returns the matched pattern as
// written and whether any pattern matched. A target whose package does
// not resolve is a load error: the registry is out of date relative to
// the codebase.
func (r *Registry) ResolvePackage(pkg string) (string, bool) {
	best := -1
	bestRaw := ""
	for _, p := range r.known {
		if !p.Matches(pkg) {
			continue
		}
		s := p.specificity()
		if s > best || (s == best && p.raw < bestRaw) {
			best = s
			bestRaw = p.raw
		}
	}
	return bestRaw, best >= 0
}
