// Package report renders check results for people and for machines.
//
// Rendering is a pure function of the result: identical results produce
// byte-identical output regardless of worker count or input edge order,
// so CI can diff reports across runs. The package holds no state and
// writes nothing but what the caller hands it.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/depfence-dev/depfence/pkg/check"
)

// Text writes the human-readable report: one block per violation with
// both endpoints' group memberships and a suggested remediation, then a
// one-line summary. policyFile names the file exceptions should go to;
// empty means the policy was built programmatically.
func Text(w io.Writer, res *check.Result, policyFile string) error {
	for _, v := range res.Violations {
		if _, err := fmt.Fprintf(w, "forbidden dependency: %s -> %s\n", v.From, v.To); err != nil {
			return err
		}
		fmt.Fprintf(w, "  from: %s (groups: %s)\n", v.From, groupList(v.FromGroups))
		fmt.Fprintf(w, "  to:   %s (groups: %s)\n", v.To, groupList(v.ToGroups))
		fmt.Fprintf(w, "  fix:  %s\n\n", remediation(v, policyFile))
	}
	_, err := fmt.Fprintln(w, Summary(res))
	return err
}

// Summary is the one-line outcome, also used as the text mode footer.
func Summary(res *check.Result) string {
	noun := "forbidden dependencies"
	switch n := len(res.Violations); n {
	case 0:
		return fmt.Sprintf("no %s (checked %d edges across %d targets)", noun, res.Edges, res.Targets)
	case 1:
		return fmt.Sprintf("1 forbidden dependency (checked %d edges across %d targets)", res.Edges, res.Targets)
	default:
		return fmt.Sprintf("%d %s (checked %d edges across %d targets)", n, noun, res.Edges, res.Targets)
	}
}

func groupList(groups []string) string {
	if len(groups) == 0 {
		return "none"
	}
	return strings.Join(groups, ", ")
}

func remediation(v check.Violation, policyFile string) string {
	if policyFile == "" {
		policyFile = "the policy file"
	}
	if len(v.FromGroups) == 0 {
		return fmt.Sprintf("add an exception for this edge to %s, or add %s to a package group", policyFile, v.From.PackagePath())
	}
	if len(v.ToGroups) == 0 {
		return fmt.Sprintf("add an exception for this edge to %s, or add %s to a package group", policyFile, v.To.PackagePath())
	}
	return fmt.Sprintf("add an exception for this edge to %s, or request an allow edge %s -> %s",
		policyFile, strings.Join(v.FromGroups, "|"), strings.Join(v.ToGroups, "|"))
}

// Violation is the machine-readable shape of one violation.
type Violation struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	FromGroups []string `json:"fromGroups"`
	ToGroups   []string `json:"toGroups"`
}

// JSON writes the machine-readable report: exactly a JSON array of
// violation objects, nothing else, so downstream tooling can consume
// stdout wholesale. Group lists are always arrays, never null.
func JSON(w io.Writer, res *check.Result) error {
	out := make([]Violation, len(res.Violations))
	for i, v := range res.Violations {
		out[i] = Violation{
			From:       v.From.String(),
			To:         v.To.String(),
			FromGroups: nonNil(v.FromGroups),
			ToGroups:   nonNil(v.ToGroups),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
