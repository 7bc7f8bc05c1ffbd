// Package label implements Bazel-style build target labels.
//
// A label names exactly one buildable target: //path/to/pkg:name. The
// shorthand //path/to/pkg is equivalent to //path/to/pkg:pkg, where the
// target is named after the last path segment. The package part of a label
// is the target's containing path; two targets with the same package part
// live in the same package.
//
// Wildcard forms (//path/..., :all, :*) are target patterns, not labels,
// and are rejected by Parse. Pattern matching lives with the policy model.
package label

import (
	"fmt"
	"strings"
)

// Label is a parsed build target label in canonical form.
// The zero value is not a valid label.
type Label struct {
	// Pkg is the package path without the leading "//". Empty for the
	// repository root package.
	Pkg string

	// Name is the target name within the package. Never empty for a
	// parsed label.
	Name string
}

// Parse parses a label string into its canonical form.
// Accepted forms:
//
//	//path/to/pkg:name
//	//path/to/pkg        (shorthand for //path/to/pkg:pkg)
//	//:name              (root package)
func Parse(s string) (Label, error) {
	if !strings.HasPrefix(s, "//") {
		return Label{}, fmt.Errorf("label %q: must start with //", s)
	}
	rest := s[2:]
	if strings.ContainsAny(rest, " \t") {
		return Label{}, fmt.Errorf("label %q: contains whitespace", s)
	}

	pkg := rest
	name := ""
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		pkg, name = rest[:i], rest[i+1:]
		if name == "" {
			return Label{}, fmt.Errorf("label %q: empty target name", s)
		}
		if strings.ContainsRune(name, ':') {
			return Label{}, fmt.Errorf("label %q: multiple colons", s)
		}
	} else {
		if pkg == "" {
			return Label{}, fmt.Errorf("label %q: empty label", s)
		}
		// Shorthand: target named after the last path segment.
		name = pkg[strings.LastIndexByte(pkg, '/')+1:]
	}

	if err := validatePkg(s, pkg); err != nil {
		return Label{}, err
	}
	// :all and :* are target patterns; "all"/"*" are reserved names.
	if name == "all" || name == "*" || strings.Contains(name, "...") {
		return Label{}, fmt.Errorf("label %q: wildcard is not a label", s)
	}

	return Label{Pkg: pkg, Name: name}, nil
}

// MustParse is Parse for known-good labels; it panics on error.
// Intended for fixtures and tests.
func MustParse(s string) Label {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

func validatePkg(full, pkg string) error {
	if pkg == "" {
		return nil
	}
	if strings.HasPrefix(pkg, "/") || strings.HasSuffix(pkg, "/") {
		return fmt.Errorf("label %q: package path has a leading or trailing slash", full)
	}
	if strings.Contains(pkg, "//") {
		return fmt.Errorf("label %q: package path contains //", full)
	}
	if strings.Contains(pkg, "...") {
		return fmt.Errorf("label %q: wildcard is not a label", full)
	}
	return nil
}

// String returns the canonical form //pkg:name.
func (l Label) String() string {
	return "//" + l.Pkg + ":" + l.Name
}

// PackagePath returns the containing package path with the leading //.
func (l Label) PackagePath() string {
	return "//" + l.Pkg
}

// SamePackage reports whether two labels share a containing package.
func (l Label) SamePackage(other Label) bool {
	return l.Pkg == other.Pkg
}

// Compare orders labels lexicographically by canonical form.
func Compare(a, b Label) int {
	return strings.Compare(a.String(), b.String())
}
