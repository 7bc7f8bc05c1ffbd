package depgraph

import (
	"fmt"
	"strings"

	"github.com/depfence-dev/depfence/pkg/label"
)

// UnresolvedTarget is a graph target whose owning package matches no
// known package path in the policy.
type UnresolvedTarget struct {
	Target label.Label
}

func (u UnresolvedTarget) String() string {
	return fmt.Sprintf("%s (package %s matches no known package path)", u.Target, u.Target.PackagePath())
}

// LoadError reports a failure to load the dependency graph: malformed
// input, an unparsable label, or targets that resolve to no known
// package. Line is 1-based and zero when the failure is not tied to a
// single input line.
type LoadError struct {
	Source     string
	Line       int
	Unresolved []UnresolvedTarget
	Err        error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("invalid graph ")
	b.WriteString(e.Source)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	b.WriteString(": ")
	if len(e.Unresolved) > 0 {
		fmt.Fprintf(&b, "%d unresolved target(s): ", len(e.Unresolved))
		for i, u := range e.Unresolved {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(u.String())
		}
		return b.String()
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }
