// Package config provides configuration management for the depfence CLI.
//
// Values come from four layers, highest priority first: command-line
// flags, DEPFENCE_* environment variables, a depfence.yaml in the project
// root, and built-in defaults.
package config

// Default configuration values.
const (
	DefaultFormat      = "text"
	DefaultGraphFormat = "auto"
)

// configFileNames are searched for in the project root, in order.
var configFileNames = []string{"depfence.yaml", "depfence.yml"}

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot anchors relative paths from the config file. It is the
	// config file's directory when one is found, the nearest ancestor
	// holding one otherwise, and the working directory as a last resort.
	ProjectRoot string `koanf:"-"`

	// Policy is the path to the policy file (YAML or Starlark).
	Policy string `koanf:"policy"`

	// Graph is the path to the dependency graph export, or "-" for stdin.
	Graph string `koanf:"graph"`

	// Format is the report format: text or json.
	Format string `koanf:"format"`

	// GraphFormat is the graph input encoding: auto, text, or json.
	GraphFormat string `koanf:"graph_format"`

	// Jobs is the edge-checking worker count. Zero means GOMAXPROCS.
	Jobs int `koanf:"jobs"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}
