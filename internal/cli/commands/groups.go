package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/depfence-dev/depfence/internal/cli/output"
)

// groupRow is the JSON shape of one group listing entry.
type groupRow struct {
	Name      string   `json:"name"`
	Patterns  []string `json:"patterns"`
	AllowedTo []string `json:"allowedTo"`
	Rationale string   `json:"rationale"`
}

// NewGroupsCommand creates the groups command.
func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the policy's package groups",
		Long: `List every package group in the policy with its patterns, the
groups it may depend on, and the rationale it was declared with.

Useful for reviewing what a policy actually grants before a check, and
for finding the group a new package should join.`,
		Example: `  # Table of all groups
  depfence groups

  # Machine-readable listing
  depfence groups --format json`,
		Args: cobra.NoArgs,
		RunE: runGroups,
	}
	return cmd
}

func runGroups(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	pol, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	allowed := make(map[string][]string)
	for _, e := range pol.Edges() {
		allowed[e.From] = append(allowed[e.From], e.To)
	}

	groups := pol.Registry.Groups()
	rows := make([]groupRow, 0, len(groups))
	for _, g := range groups {
		to := allowed[g.Name]
		if to == nil {
			to = []string{}
		}
		rows = append(rows, groupRow{
			Name:      g.Name,
			Patterns:  g.Patterns(),
			AllowedTo: to,
			Rationale: g.Rationale,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Group", "Patterns", "Allowed To", "Rationale"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Name,
			strings.Join(row.Patterns, "\n"),
			strings.Join(row.AllowedTo, "\n"),
			row.Rationale,
		})
	}
	t.Render()
	return nil
}
