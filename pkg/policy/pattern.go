package policy

import (
	"fmt"
	"strings"
)

// Pattern is a package path-pattern used for group membership.
//
// Forms:
//
//	//path/to/pkg       exact package
//	//path/to/...       the package and everything beneath it
//	//...               every package
//	-//path/to/...      exclusion (any of the above, minus-prefixed)
//
// Exclusions override includes when at least as specific
// (longest-prefix-wins applies to exclusions only).
type Pattern struct {
	prefix    string // bare package path, "" = repository root
	recursive bool
	exclude   bool
	raw       string
}

// ParsePattern parses a single path-pattern.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern{raw: s}
	rest := s
	if strings.HasPrefix(rest, "-") {
		p.exclude = true
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, "//") {
		return Pattern{}, fmt.Errorf("pattern %q: must start with //", s)
	}
	rest = rest[2:]
	if strings.HasPrefix(rest, "/") {
		return Pattern{}, fmt.Errorf("pattern %q: malformed package path", s)
	}

	switch {
	case rest == "...":
		p.recursive = true
		rest = ""
	case strings.HasSuffix(rest, "/..."):
		p.recursive = true
		rest = strings.TrimSuffix(rest, "/...")
	}
	if rest == "" && !p.recursive {
		return Pattern{}, fmt.Errorf("pattern %q: empty package path", s)
	}
	if strings.Contains(rest, "...") {
		return Pattern{}, fmt.Errorf("pattern %q: ... is only valid as a trailing segment", s)
	}
	if strings.ContainsRune(rest, ':') {
		return Pattern{}, fmt.Errorf("pattern %q: patterns match packages, not targets", s)
	}
	if strings.ContainsAny(rest, " \t") {
		return Pattern{}, fmt.Errorf("pattern %q: contains whitespace", s)
	}
	if strings.HasPrefix(rest, "/") || strings.HasSuffix(rest, "/") || strings.Contains(rest, "//") {
		return Pattern{}, fmt.Errorf("pattern %q: malformed package path", s)
	}

	p.prefix = rest
	return p, nil
}

// Matches reports whether the pattern matches the bare package path.
func (p Pattern) Matches(pkg string) bool {
	if !p.recursive {
		return pkg == p.prefix
	}
	if p.prefix == "" {
		return true
	}
	return pkg == p.prefix || strings.HasPrefix(pkg, p.prefix+"/")
}

// Exclude reports whether this is an exclusion pattern.
func (p Pattern) Exclude() bool { return p.exclude }

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// specificity orders patterns by how precisely they pin a package:
// longer prefixes win, and at equal prefix an exact pattern beats a
// recursive one.
func (p Pattern) specificity() int {
	s := 2 * len(p.prefix)
	if !p.recursive {
		s++
	}
	return s
}

// matchSet answers membership for one pattern list: some include matches,
// and no exclusion at least as specific as the best include matches.
func matchSet(patterns []Pattern, pkg string) bool {
	bestInc := -1
	bestExc := -1
	for _, p := range patterns {
		if !p.Matches(pkg) {
			continue
		}
		if p.exclude {
			if s := p.specificity(); s > bestExc {
				bestExc = s
			}
		} else {
			if s := p.specificity(); s > bestInc {
				bestInc = s
			}
		}
	}
	return bestInc >= 0 && bestInc > bestExc
}
