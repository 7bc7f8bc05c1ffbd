package commands

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depfence-dev/depfence/pkg/depgraph"
)

func TestCheckCommand_ReportsViolations(t *testing.T) {
	writePolicy(t)
	writeGraph(t, "//publish/cdn:push //rs/tests/driver:main\n")

	out, _, err := execute(t, NewCheckCommand())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrViolationsFound), "want ErrViolationsFound, got %v", err)
	assert.Contains(t, out, "forbidden dependency: //publish/cdn:push -> //rs/tests/driver:main")
	assert.Contains(t, out, "1 forbidden dependency (checked 1 edges across 2 targets)")
}

func TestCheckCommand_CleanGraph(t *testing.T) {
	writePolicy(t)
	writeGraph(t, "//rs/tests/driver:main //rs/common/retry:retry\n")

	out, _, err := execute(t, NewCheckCommand())

	require.NoError(t, err)
	assert.Contains(t, out, "no forbidden dependencies (checked 1 edges across 2 targets)")
}

func TestCheckCommand_JSONKeepsStdoutPure(t *testing.T) {
	// A policy whose exception never matches produces an advisory. It must
	// land on stderr, leaving stdout parseable.
	writePolicy(t)
	writeGraph(t, "//publish/cdn:push //rs/tests/driver:main\n")
	t.Setenv("DEPFENCE_FORMAT", "json")

	out, errOut, err := execute(t, NewCheckCommand())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrViolationsFound))

	var violations []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &violations), "stdout is not valid JSON: %s", out)
	require.Len(t, violations, 1)
	assert.Equal(t, "//publish/cdn:push", violations[0]["from"])
	assert.Equal(t, "//rs/tests/driver:main", violations[0]["to"])

	assert.Contains(t, errOut, "advisory (unused-exception)")
	assert.NotContains(t, out, "advisory")
}

func TestCheckCommand_GraphFromStdin(t *testing.T) {
	writePolicy(t)
	t.Setenv("DEPFENCE_GRAPH", "-")

	cmd := NewCheckCommand()
	cmd.SetIn(strings.NewReader("//rs/tests/driver:main //rs/common/retry:retry\n"))
	out, _, err := execute(t, cmd)

	require.NoError(t, err)
	assert.Contains(t, out, "no forbidden dependencies")
}

func TestCheckCommand_UnresolvedTargetsAbort(t *testing.T) {
	writePolicy(t)
	writeGraph(t, "//rogue/pkg:tool //rs/common/retry:retry\n")

	_, _, err := execute(t, NewCheckCommand())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrViolationsFound), "load errors must not report as violations")
	var loadErr *depgraph.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Len(t, loadErr.Unresolved, 1)
}

func TestCheckCommand_RequiresPolicy(t *testing.T) {
	// No config file, no env: the command cannot run.
	writeGraph(t, "")
	t.Setenv("DEPFENCE_POLICY", "")

	_, _, err := execute(t, NewCheckCommand())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--policy")
}

func TestCheckCommand_RequiresGraph(t *testing.T) {
	writePolicy(t)
	t.Setenv("DEPFENCE_GRAPH", "")

	_, _, err := execute(t, NewCheckCommand())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--graph")
}
