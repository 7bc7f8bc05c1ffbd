package config

import (
	"fmt"

	"github.com/depfence-dev/depfence/internal/cli/output"
	"github.com/depfence-dev/depfence/pkg/depgraph"
)

// Validate rejects value errors no command could recover from. Presence
// requirements (a check run needs a policy and a graph) are enforced by
// the commands themselves, since not every command needs both.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.Format); err != nil {
		return err
	}
	if _, err := depgraph.ParseFormat(c.GraphFormat); err != nil {
		return err
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be zero or positive, got %d", c.Jobs)
	}
	return nil
}
