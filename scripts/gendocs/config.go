package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "policy", Type: "string", Description: "Path to the boundary policy file (YAML or Starlark)"},
		{Name: "graph", Type: "string", Description: "Path to the dependency graph export, or - for stdin"},
		{Name: "format", Type: "string", Default: "text", Description: "Report format: text or json"},
		{Name: "graph_format", Type: "string", Default: "auto", Description: "Graph input encoding: auto, text, or json"},
		{Name: "jobs", Type: "int", Default: "0", Description: "Edge-checking worker count (0 uses all CPUs)"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Enable debug logging"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "depfence configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph("depfence is configured via `depfence.yaml` (or `depfence.yml`) in your project root. The file is discovered by walking up from the working directory, so commands work from any subdirectory of the repository.")

	// Settings section
	w.Header(2, "Settings")

	fields := getConfigSchema()
	headers := []string{"Field", "Type", "Default", "Description"}
	var rows [][]string
	for _, f := range fields {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		}
		rows = append(rows, []string{
			InlineCode(f.Name),
			f.Type,
			InlineCode(defVal),
			f.Description,
		})
	}
	w.Table(headers, rows)

	// Path resolution
	w.Header(2, "Path Resolution")
	w.Paragraph("Relative paths in the config file resolve against the directory holding the file. Relative paths given on the command line resolve against the working directory.")

	// Full example
	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# depfence.yaml

policy: build/boundaries.yaml
graph: build/deps.txt
format: text
graph_format: auto
jobs: 8`)

	// Environment variables
	w.Header(2, "Environment Variables")
	w.Paragraph("Every key can also be set through the environment with a `DEPFENCE_` prefix, for example `DEPFENCE_POLICY` or `DEPFENCE_GRAPH_FORMAT`. Precedence is flags over environment variables over the config file over built-in defaults.")

	// Write file
	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
