package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/depfence-dev/depfence/internal/cli/output"
	"github.com/depfence-dev/depfence/pkg/check"
	"github.com/depfence-dev/depfence/pkg/report"
)

// ErrViolationsFound signals that the check found forbidden dependencies.
// The report has already been written when this is returned, so callers
// map it to an exit code without printing anything further.
var ErrViolationsFound = errors.New("forbidden dependencies found")

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the dependency graph against the policy",
		Long: `Check every edge of the dependency graph against the policy and
report the forbidden ones.

An edge is permitted when both endpoints share a package, when some
group of the source may depend on some group of the destination, or
when an exception names the edge. Everything else is a violation.

Violations are deduplicated and sorted, so the report is byte-stable
across runs and suitable for CI diffing. Advisory warnings (allow
cycles, unused exceptions) go to stderr and never affect the exit code.`,
		Example: `  # Check a bazel query export against the policy
  bazel query 'deps(//...)' --output graph | depfence check --policy boundaries.yaml --graph -

  # Check a saved export, machine-readable report
  depfence check --policy boundaries.yaml --graph deps.txt --format json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	pol, err := loadPolicy(cfg)
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd, cfg, pol.Registry)
	if err != nil {
		return err
	}

	res, err := check.Check(cmd.Context(), pol, g, check.Options{Jobs: cfg.Jobs})
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("check complete",
		"targets", res.Targets,
		"edges", res.Edges,
		"violations", len(res.Violations),
		"advisories", len(res.Advisories),
	)

	// Advisories go to stderr in every mode so stdout stays parseable.
	for _, a := range res.Advisories {
		r.Warning("advisory (%s): %s", a.Code, a.Message)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := report.JSON(r.Out(), res); err != nil {
			return err
		}
	} else {
		if err := report.Text(r.Out(), res, cfg.Policy); err != nil {
			return err
		}
	}

	if !res.OK() {
		return ErrViolationsFound
	}
	return nil
}
