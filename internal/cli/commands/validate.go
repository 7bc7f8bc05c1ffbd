package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/depfence-dev/depfence/internal/cli/output"
)

// validateOutput is the JSON shape of a validate run.
type validateOutput struct {
	File       string   `json:"file"`
	Groups     int      `json:"groups"`
	AllowEdges int      `json:"allowEdges"`
	Exceptions int      `json:"exceptions"`
	Cycle      []string `json:"cycle,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the policy file without checking a graph",
		Long: `Parse the policy file and report whether it is well formed.

Validation covers everything checking would reject: pattern syntax,
duplicate group names, blank rationales, allow edges over unknown
groups, and malformed exceptions. A cycle in the allow edges is
reported as a warning but does not fail validation.`,
		Example: `  # Validate the policy referenced by depfence.yaml
  depfence validate

  # Validate a specific file
  depfence validate --policy boundaries.star`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	pol, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	cycle := pol.Cycle()
	if len(cycle) > 0 {
		r.Warning("advisory (policy-cycle): allow edges form a cycle (%s); layering between these groups is not directional", strings.Join(cycle, " -> "))
	}

	out := validateOutput{
		File:       cfg.Policy,
		Groups:     len(pol.Registry.Groups()),
		AllowEdges: len(pol.Edges()),
		Exceptions: len(pol.Exceptions()),
		Cycle:      cycle,
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Success("policy %s is valid", cfg.Policy)
	r.Printf("  groups:      %d\n", out.Groups)
	r.Printf("  allow edges: %d\n", out.AllowEdges)
	r.Printf("  exceptions:  %d\n", out.Exceptions)
	return nil
}
