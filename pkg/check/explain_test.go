package check

import (
	"strings"
	"testing"

	"github.com/depfence-dev/depfence/pkg/label"
	"github.com/depfence-dev/depfence/pkg/policy"
)

func explainEdge(t *testing.T, pol *policy.Policy, from, to string) *Explanation {
	t.Helper()
	exp, err := Explain(pol, label.MustParse(from), label.MustParse(to))
	if err != nil {
		t.Fatalf("Explain(%s, %s): %v", from, to, err)
	}
	return exp
}

func TestExplain_AllowEdge(t *testing.T) {
	pol := scenarioPolicy(t)
	exp := explainEdge(t, pol, "//ic-os/x:x", "//publish/y:y")

	if exp.Verdict != VerdictPermitted {
		t.Fatalf("verdict = %s, want permitted", exp.Verdict)
	}
	if exp.Reason != "allow edge ic-os -> release" {
		t.Errorf("reason = %q", exp.Reason)
	}
}

func TestExplain_SamePackage(t *testing.T) {
	pol := scenarioPolicy(t)
	exp := explainEdge(t, pol, "//publish/y:y", "//publish/y:gen")

	if exp.Verdict != VerdictPermitted {
		t.Fatalf("verdict = %s, want permitted", exp.Verdict)
	}
	if !strings.Contains(exp.Reason, "//publish/y") {
		t.Errorf("reason = %q, want the shared package named", exp.Reason)
	}
}

func TestExplain_Exception(t *testing.T) {
	pol := scenarioPolicy(t)
	if err := pol.AddException("//publish/y", "//rs/tests/z", "temporary migration shim"); err != nil {
		t.Fatal(err)
	}
	exp := explainEdge(t, pol, "//publish/y:y", "//rs/tests/z:z")

	if exp.Verdict != VerdictExempted {
		t.Fatalf("verdict = %s, want exempted", exp.Verdict)
	}
	if !strings.Contains(exp.Reason, "temporary migration shim") {
		t.Errorf("reason = %q, want the exception's rationale", exp.Reason)
	}
}

func TestExplain_Forbidden(t *testing.T) {
	pol := scenarioPolicy(t)
	exp := explainEdge(t, pol, "//publish/y:y", "//rs/tests/z:z")

	if exp.Verdict != VerdictForbidden {
		t.Fatalf("verdict = %s, want forbidden", exp.Verdict)
	}
	if got := exp.FromGroups; len(got) != 1 || got[0] != "release" {
		t.Errorf("FromGroups = %v", got)
	}
	if got := exp.ToGroups; len(got) != 1 || got[0] != "system-tests" {
		t.Errorf("ToGroups = %v", got)
	}
}

// A redundant exception explains as permitted, mirroring Check, which
// never consults exceptions for edges the group relation already covers.
func TestExplain_RedundantExceptionExplainsAsPermitted(t *testing.T) {
	pol := scenarioPolicy(t)
	if err := pol.AddException("//ic-os/x", "//publish/y", "predates the ic-os allow edge"); err != nil {
		t.Fatal(err)
	}
	exp := explainEdge(t, pol, "//ic-os/x:x", "//publish/y:y")

	if exp.Verdict != VerdictPermitted {
		t.Errorf("verdict = %s, want permitted via the allow edge", exp.Verdict)
	}
}

func TestExplain_UnresolvedEndpoint(t *testing.T) {
	pol := scenarioPolicy(t)
	_, err := Explain(pol, label.MustParse("//rogue/pkg:tool"), label.MustParse("//publish/y:y"))

	if err == nil || !strings.Contains(err.Error(), "matches no known package path") {
		t.Fatalf("err = %v, want unresolved package error", err)
	}
}
