package check

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/depfence-dev/depfence/pkg/depgraph"
	"github.com/depfence-dev/depfence/pkg/policy"
)

func scenarioPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	reg := policy.NewRegistry()
	for _, g := range []struct {
		name, rationale string
		patterns        []string
	}{
		{"system-tests", "integration test harness", []string{"//rs/tests/..."}},
		{"release", "artifacts shipped to mainnet", []string{"//publish/..."}},
		{"ic-os", "OS image build", []string{"//ic-os/...", "//rs/ic_os/..."}},
	} {
		if _, err := reg.RegisterGroup(g.name, g.rationale, g.patterns); err != nil {
			t.Fatalf("RegisterGroup(%s): %v", g.name, err)
		}
	}
	if err := reg.RegisterPackages([]string{"//third_party/..."}); err != nil {
		t.Fatalf("RegisterPackages: %v", err)
	}

	pol := policy.New(reg)
	if err := pol.Allow("ic-os", "release"); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	return pol
}

func loadGraph(t *testing.T, pol *policy.Policy, text string) *depgraph.Graph {
	t.Helper()
	g, err := depgraph.Load(strings.NewReader(text), pol.Registry, "test-graph", depgraph.FormatText)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g
}

func run(t *testing.T, pol *policy.Policy, g *depgraph.Graph, opts Options) *Result {
	t.Helper()
	res, err := Check(context.Background(), pol, g, opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return res
}

func pairs(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprintf("%s -> %s", v.From, v.To)
	}
	return out
}

func TestCheck_PermittedAndViolatingEdges(t *testing.T) {
	pol := scenarioPolicy(t)
	g := loadGraph(t, pol, `
//ic-os/x:x //publish/y:y
//publish/y:y //rs/tests/z:z
`)
	res := run(t, pol, g, Options{})

	if len(res.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly 1", pairs(res.Violations))
	}
	v := res.Violations[0]
	if v.From.String() != "//publish/y:y" || v.To.String() != "//rs/tests/z:z" {
		t.Errorf("violation = %s -> %s", v.From, v.To)
	}
	if !reflect.DeepEqual(v.FromGroups, []string{"release"}) {
		t.Errorf("FromGroups = %v, want [release]", v.FromGroups)
	}
	if !reflect.DeepEqual(v.ToGroups, []string{"system-tests"}) {
		t.Errorf("ToGroups = %v, want [system-tests]", v.ToGroups)
	}
	if res.Edges != 2 || res.Targets != 3 {
		t.Errorf("Edges/Targets = %d/%d, want 2/3", res.Edges, res.Targets)
	}
}

func TestCheck_ExceptionRemovesOnlyTheNamedEdge(t *testing.T) {
	pol := scenarioPolicy(t)
	const graph = `
//publish/y:y //rs/tests/z:z
//publish/y:y //ic-os/x:x
`
	before := run(t, pol, loadGraph(t, pol, graph), Options{})
	if len(before.Violations) != 2 {
		t.Fatalf("violations before exception = %v, want 2", pairs(before.Violations))
	}

	if err := pol.AddException("//publish/y", "//rs/tests/z", "temporary migration shim"); err != nil {
		t.Fatalf("AddException: %v", err)
	}
	after := run(t, pol, loadGraph(t, pol, graph), Options{})

	if got := pairs(after.Violations); !reflect.DeepEqual(got, []string{"//publish/y:y -> //ic-os/x:x"}) {
		t.Errorf("violations after exception = %v", got)
	}
}

func TestCheck_TargetExceptionExactMatch(t *testing.T) {
	pol := scenarioPolicy(t)
	const graph = "//rs/ic_os/launch-single-vm //rs/tests/driver:ic-system-test-driver\n"

	res := run(t, pol, loadGraph(t, pol, graph), Options{})
	if got := pairs(res.Violations); !reflect.DeepEqual(got, []string{"//rs/ic_os/launch-single-vm:launch-single-vm -> //rs/tests/driver:ic-system-test-driver"}) {
		t.Fatalf("violations without exception = %v", got)
	}

	err := pol.AddException("//rs/ic_os/launch-single-vm", "//rs/tests/driver:ic-system-test-driver", "single-vm launcher drives the system test driver")
	if err != nil {
		t.Fatalf("AddException: %v", err)
	}
	res = run(t, pol, loadGraph(t, pol, graph), Options{})
	if !res.OK() {
		t.Errorf("violations with exception = %v, want none", pairs(res.Violations))
	}
}

func TestCheck_OverlappingGroupsArePermissive(t *testing.T) {
	reg := policy.NewRegistry()
	mustGroup := func(name, rationale string, patterns ...string) {
		t.Helper()
		if _, err := reg.RegisterGroup(name, rationale, patterns); err != nil {
			t.Fatal(err)
		}
	}
	mustGroup("common-lib", "shared utility code", "//rs/common/...")
	mustGroup("rs-all", "everything in the rs tree", "//rs/...")
	mustGroup("release", "artifacts shipped to mainnet", "//publish/...")

	pol := policy.New(reg)
	// Only one of the two groups containing //rs/common grants the edge.
	if err := pol.Allow("rs-all", "release"); err != nil {
		t.Fatal(err)
	}

	g := loadGraph(t, pol, "//rs/common/util:util //publish/y:y\n")
	res := run(t, pol, g, Options{})
	if !res.OK() {
		t.Errorf("violations = %v, want none: any containing group's rights cover the edge", pairs(res.Violations))
	}
}

func TestCheck_IntraPackageEdgesNeverViolate(t *testing.T) {
	pol := scenarioPolicy(t)
	g := loadGraph(t, pol, `
//rs/tests/z:a //rs/tests/z:b
//publish/y:y //publish/y:gen
`)
	res := run(t, pol, g, Options{})
	if !res.OK() {
		t.Errorf("violations = %v, want none for intra-package edges", pairs(res.Violations))
	}
}

// The allow relation is pairwise only. ic-os -> release and
// release -> system-tests must NOT imply ic-os -> system-tests: inferring
// closure here would silently widen the policy every time a new group is
// inserted between existing layers.
func TestCheck_NoTransitiveClosureOverGroups(t *testing.T) {
	pol := scenarioPolicy(t)
	if err := pol.Allow("release", "system-tests"); err != nil {
		t.Fatal(err)
	}

	g := loadGraph(t, pol, "//ic-os/x:x //rs/tests/z:z\n")
	res := run(t, pol, g, Options{})
	if got := pairs(res.Violations); !reflect.DeepEqual(got, []string{"//ic-os/x:x -> //rs/tests/z:z"}) {
		t.Errorf("violations = %v, want the transitive edge reported", got)
	}
}

func TestCheck_AddingAllowEdgeIsMonotonic(t *testing.T) {
	const graph = `
//ic-os/x:x //publish/y:y
//publish/y:y //rs/tests/z:z
//ic-os/x:x //rs/tests/z:z
`
	pol := scenarioPolicy(t)
	before := run(t, pol, loadGraph(t, pol, graph), Options{})

	if err := pol.Allow("release", "system-tests"); err != nil {
		t.Fatal(err)
	}
	after := run(t, pol, loadGraph(t, pol, graph), Options{})

	if len(after.Violations) >= len(before.Violations) {
		t.Fatalf("adding an allow edge did not shrink violations: before %v, after %v",
			pairs(before.Violations), pairs(after.Violations))
	}
	was := make(map[string]bool)
	for _, p := range pairs(before.Violations) {
		was[p] = true
	}
	for _, p := range pairs(after.Violations) {
		if !was[p] {
			t.Errorf("edge %s became a violation after relaxing the policy", p)
		}
	}
}

func TestCheck_DuplicateEdgesReportOnce(t *testing.T) {
	pol := scenarioPolicy(t)
	g := loadGraph(t, pol, `
//publish/y:y //rs/tests/z:z
//publish/y:y //rs/tests/z:z
//publish/y:y //rs/tests/z:z
`)
	res := run(t, pol, g, Options{})
	if len(res.Violations) != 1 {
		t.Errorf("violations = %v, want the pair deduplicated to 1", pairs(res.Violations))
	}
	if res.Edges != 3 {
		t.Errorf("Edges = %d, want raw count 3", res.Edges)
	}
}

func TestCheck_UngovernedTargetHasNoRights(t *testing.T) {
	pol := scenarioPolicy(t)
	g := loadGraph(t, pol, "//publish/y:y //third_party/zlib:zlib\n")
	res := run(t, pol, g, Options{})

	if len(res.Violations) != 1 {
		t.Fatalf("violations = %v, want 1", pairs(res.Violations))
	}
	if got := res.Violations[0].ToGroups; len(got) != 0 {
		t.Errorf("ToGroups = %v, want empty for ungoverned target", got)
	}
}

func TestCheck_DeterministicAcrossWorkerCounts(t *testing.T) {
	pol := scenarioPolicy(t)
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "//publish/p%03d:t //rs/tests/s%03d:t\n", i, i%7)
		fmt.Fprintf(&sb, "//ic-os/i%03d:t //publish/p%03d:t\n", i, i)
	}
	graph := sb.String()

	base := run(t, pol, loadGraph(t, pol, graph), Options{Jobs: 1})
	for _, jobs := range []int{0, 2, 8, 1000} {
		res := run(t, pol, loadGraph(t, pol, graph), Options{Jobs: jobs})
		if !reflect.DeepEqual(res, base) {
			t.Errorf("result with %d jobs differs from single-worker result", jobs)
		}
	}
}

func TestCheck_PolicyCycleAdvisory(t *testing.T) {
	pol := scenarioPolicy(t)
	for _, e := range [][2]string{{"release", "system-tests"}, {"system-tests", "release"}} {
		if err := pol.Allow(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	res := run(t, pol, loadGraph(t, pol, "//publish/y:y //rs/tests/z:z\n"), Options{})
	if !res.OK() {
		t.Errorf("violations = %v, want none: the cycle is advisory, not gating", pairs(res.Violations))
	}
	if len(res.Advisories) != 1 || res.Advisories[0].Code != AdvisoryPolicyCycle {
		t.Fatalf("advisories = %+v, want one policy-cycle advisory", res.Advisories)
	}
	if !strings.Contains(res.Advisories[0].Message, "release") {
		t.Errorf("advisory message %q does not name the cycle", res.Advisories[0].Message)
	}
}

func TestCheck_UnusedExceptionAdvisory(t *testing.T) {
	pol := scenarioPolicy(t)
	if err := pol.AddException("//publish/y", "//rs/tests/z", "temporary migration shim"); err != nil {
		t.Fatal(err)
	}
	if err := pol.AddException("//publish/gone", "//rs/tests/z", "left over from a deleted target"); err != nil {
		t.Fatal(err)
	}

	res := run(t, pol, loadGraph(t, pol, "//publish/y:y //rs/tests/z:z\n"), Options{})
	if !res.OK() {
		t.Fatalf("violations = %v, want none", pairs(res.Violations))
	}
	if len(res.Advisories) != 1 || res.Advisories[0].Code != AdvisoryUnusedException {
		t.Fatalf("advisories = %+v, want one unused-exception advisory", res.Advisories)
	}
	if !strings.Contains(res.Advisories[0].Message, "//publish/gone") {
		t.Errorf("advisory %q does not name the unused exception", res.Advisories[0].Message)
	}
}

// An exception for an edge the group relation already permits never gets
// consulted, so it surfaces as unused. That is the desired hygiene
// signal: the exception can be deleted.
func TestCheck_RedundantExceptionReportedUnused(t *testing.T) {
	pol := scenarioPolicy(t)
	if err := pol.AddException("//ic-os/x", "//publish/y", "predates the ic-os allow edge"); err != nil {
		t.Fatal(err)
	}

	res := run(t, pol, loadGraph(t, pol, "//ic-os/x:x //publish/y:y\n"), Options{})
	if len(res.Advisories) != 1 || res.Advisories[0].Code != AdvisoryUnusedException {
		t.Errorf("advisories = %+v, want the redundant exception flagged unused", res.Advisories)
	}
}

func TestCheck_EmptyGraph(t *testing.T) {
	pol := scenarioPolicy(t)
	res := run(t, pol, loadGraph(t, pol, ""), Options{})

	if !res.OK() || res.Edges != 0 || res.Targets != 0 {
		t.Errorf("empty graph result = %+v, want clean zero run", res)
	}
}
