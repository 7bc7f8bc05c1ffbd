package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsCommand_Table(t *testing.T) {
	writePolicy(t)

	out, _, err := execute(t, NewGroupsCommand())

	require.NoError(t, err)
	// StyleLight upcases headers.
	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "ALLOWED TO")
	assert.Contains(t, out, "system-tests")
	assert.Contains(t, out, "//rs/tests/...")
	assert.Contains(t, out, "common-lib")
	assert.Contains(t, out, "artifact publishing pipeline")
}

func TestGroupsCommand_JSON(t *testing.T) {
	writePolicy(t)
	t.Setenv("DEPFENCE_FORMAT", "json")

	out, _, err := execute(t, NewGroupsCommand())

	require.NoError(t, err)
	var rows []struct {
		Name      string   `json:"name"`
		Patterns  []string `json:"patterns"`
		AllowedTo []string `json:"allowedTo"`
		Rationale string   `json:"rationale"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	// Groups list sorted by name.
	assert.Equal(t, "common-lib", rows[0].Name)
	assert.Equal(t, "release", rows[1].Name)
	assert.Equal(t, "system-tests", rows[2].Name)

	assert.Equal(t, []string{"//rs/tests/..."}, rows[2].Patterns)
	assert.Equal(t, []string{"common-lib"}, rows[2].AllowedTo)
	assert.NotEmpty(t, rows[2].Rationale)
}

func TestGroupsCommand_JSONGroupsWithoutEdgesGetEmptyArray(t *testing.T) {
	writePolicy(t)
	t.Setenv("DEPFENCE_FORMAT", "json")

	out, _, err := execute(t, NewGroupsCommand())

	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	for _, row := range rows {
		assert.NotNil(t, row["allowedTo"], "allowedTo must be an array, not null (group %v)", row["name"])
	}
}
