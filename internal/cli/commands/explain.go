package commands

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/depfence-dev/depfence/internal/cli/output"
	"github.com/depfence-dev/depfence/pkg/check"
	"github.com/depfence-dev/depfence/pkg/label"
)

// explainOutput is the JSON shape of an explain run.
type explainOutput struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	FromGroups []string `json:"fromGroups"`
	ToGroups   []string `json:"toGroups"`
	Verdict    string   `json:"verdict"`
	Reason     string   `json:"reason"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <from> <to>",
		Short: "Explain the policy's verdict for one dependency edge",
		Long: `Evaluate a single dependency edge against the policy and name the
rule that decides it: the shared package, the allow edge between two
groups, the exception covering the edge, or nothing.

The edge does not have to exist in any graph export; explain answers
"would this dependency be legal" before the code is written.`,
		Example: `  # Would the test driver be allowed to depend on the publisher?
  depfence explain //rs/tests/driver:main //publish/cdn:upload

  # Shorthand labels work the same way they do in a graph export
  depfence explain //rs/tests //rs/common`,
		Args: cobra.ExactArgs(2),
		RunE: runExplain,
	}
	return cmd
}

func runExplain(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	from, err := label.Parse(args[0])
	if err != nil {
		return err
	}
	to, err := label.Parse(args[1])
	if err != nil {
		return err
	}

	pol, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	exp, err := check.Explain(pol, from, to)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(explainOutput{
			From:       exp.From.String(),
			To:         exp.To.String(),
			FromGroups: exp.FromGroups,
			ToGroups:   exp.ToGroups,
			Verdict:    string(exp.Verdict),
			Reason:     exp.Reason,
		})
	}

	titleCaser := cases.Title(language.English)
	heading := verdictStyle(r, exp.Verdict).Render(titleCaser.String(string(exp.Verdict)))

	r.Printf("%s: %s -> %s\n", heading, exp.From, exp.To)
	r.Printf("  from: %s (groups: %s)\n", exp.From, groupList(exp.FromGroups))
	r.Printf("  to:   %s (groups: %s)\n", exp.To, groupList(exp.ToGroups))
	r.Printf("  why:  %s\n", exp.Reason)
	return nil
}

func verdictStyle(r *output.Renderer, v check.Verdict) lipgloss.Style {
	switch v {
	case check.VerdictPermitted:
		return r.Styles().Success
	case check.VerdictExempted:
		return r.Styles().Warning
	default:
		return r.Styles().Error
	}
}

func groupList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
