// Package main provides the depfence CLI.
package main

import (
	"errors"
	"os"

	"github.com/depfence-dev/depfence/internal/cli"
	"github.com/depfence-dev/depfence/internal/cli/commands"
)

func main() {
	os.Exit(exitCode(cli.Execute()))
}

// exitCode maps the run's outcome onto the CI contract: 0 for a clean
// check, 1 when violations were found and reported, 2 when anything
// kept the check from completing (bad policy, unreadable graph,
// unresolved targets).
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, commands.ErrViolationsFound):
		return 1
	default:
		return 2
	}
}
