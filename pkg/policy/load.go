package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk YAML shape. Decoding is strict: unknown keys
// anywhere in the document are configuration errors.
type policyFile struct {
	Packages   []string            `yaml:"packages"`
	Groups     []groupEntry        `yaml:"groups"`
	Allow      map[string][]string `yaml:"allow"`
	Exceptions []exceptionEntry    `yaml:"exceptions"`
}

type groupEntry struct {
	Name      string   `yaml:"name"`
	Rationale string   `yaml:"rationale"`
	Packages  []string `yaml:"packages"`
}

type exceptionEntry struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Rationale string `yaml:"rationale"`
}

// Load reads and parses a policy file. The format is chosen by
// extension: .star and .bzl evaluate as Starlark, everything else
// parses as YAML.
func Load(path string) (*Policy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy: %w", err)
	}
	switch filepath.Ext(path) {
	case ".star", ".bzl":
		return ParseStarlark(src, path)
	default:
		return ParseYAML(src, path)
	}
}

// ParseYAML parses a YAML policy document. path is recorded on the
// resulting policy and in error messages.
func ParseYAML(src []byte, path string) (*Policy, error) {
	var pf policyFile
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document: a well-formed policy with nothing in it.
			return build(policyFile{}, path)
		}
		return nil, &ConfigError{File: path, Err: fmt.Errorf("invalid YAML: %v", err)}
	}
	return build(pf, path)
}

func build(pf policyFile, path string) (*Policy, error) {
	reg := NewRegistry()
	for _, g := range pf.Groups {
		if _, err := reg.RegisterGroup(g.Name, g.Rationale, g.Packages); err != nil {
			return nil, withFile(err, path)
		}
	}
	if err := reg.RegisterPackages(pf.Packages); err != nil {
		return nil, withFile(err, path)
	}

	p := New(reg)
	p.SourceFile = path

	froms := make([]string, 0, len(pf.Allow))
	for from := range pf.Allow {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		for _, to := range pf.Allow[from] {
			if err := p.Allow(from, to); err != nil {
				return nil, withFile(err, path)
			}
		}
	}

	for _, e := range pf.Exceptions {
		if err := p.AddException(e.From, e.To, e.Rationale); err != nil {
			return nil, withFile(err, path)
		}
	}
	return p, nil
}

// withFile stamps the policy path onto a ConfigError produced while
// building the model.
func withFile(err error, path string) error {
	var ce *ConfigError
	if errors.As(err, &ce) && ce.File == "" {
		ce.File = path
	}
	return err
}

