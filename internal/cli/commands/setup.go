package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/depfence-dev/depfence/internal/cli/config"
	"github.com/depfence-dev/depfence/internal/cli/output"
	"github.com/depfence-dev/depfence/pkg/depgraph"
	"github.com/depfence-dev/depfence/pkg/policy"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's context
// and configured output streams.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.Format)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	jobs := 0
	if v := os.Getenv("DEPFENCE_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			jobs = n
		}
	}

	return &config.Config{
		Policy:      os.Getenv("DEPFENCE_POLICY"),
		Graph:       os.Getenv("DEPFENCE_GRAPH"),
		Format:      getEnvOrDefault("DEPFENCE_FORMAT", config.DefaultFormat),
		GraphFormat: getEnvOrDefault("DEPFENCE_GRAPH_FORMAT", config.DefaultGraphFormat),
		Jobs:        jobs,
		Verbose:     os.Getenv("DEPFENCE_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadPolicy loads the configured policy file.
func loadPolicy(cfg *config.Config) (*policy.Policy, error) {
	if cfg.Policy == "" {
		return nil, fmt.Errorf("no policy file configured (pass --policy or set policy in depfence.yaml)")
	}
	return policy.Load(cfg.Policy)
}

// loadGraph loads the configured dependency graph and resolves its
// targets against the policy's package registry. A graph path of "-"
// reads from the command's stdin.
func loadGraph(cmd *cobra.Command, cfg *config.Config, reg *policy.Registry) (*depgraph.Graph, error) {
	if cfg.Graph == "" {
		return nil, fmt.Errorf("no graph input configured (pass --graph or set graph in depfence.yaml)")
	}
	format, err := depgraph.ParseFormat(cfg.GraphFormat)
	if err != nil {
		return nil, err
	}
	if cfg.Graph == "-" {
		return depgraph.Load(cmd.InOrStdin(), reg, "stdin", format)
	}
	return depgraph.LoadFile(cfg.Graph, reg, format)
}
