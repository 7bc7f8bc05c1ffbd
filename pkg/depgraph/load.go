package depgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/depfence-dev/depfence/pkg/label"
	"github.com/depfence-dev/depfence/pkg/policy"
)

// Format selects the graph input encoding.
type Format string

const (
	// FormatAuto sniffs the encoding from the input itself.
	FormatAuto Format = "auto"
	// FormatText is one edge per line, "<from> <to>", with # comments.
	// Lines in `bazel query --output graph` DOT form are also accepted.
	FormatText Format = "text"
	// FormatJSON is {"targets": [...], "edges": [...]}.
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied graph format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported graph format %q (supported: text, json)", s)
	}
}

// LoadFile reads a dependency graph from path and resolves it against reg.
func LoadFile(path string, reg *policy.Registry, format Format) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()
	return Load(f, reg, path, format)
}

// Load reads a dependency graph from r and resolves every target's owning
// package against the policy's known package paths. Targets that resolve
// to no known package make the load fail; they are never silently
// skipped. source names the input in errors ("deps.txt", "stdin").
func Load(r io.Reader, reg *policy.Registry, source string, format Format) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if format == FormatAuto {
		format = sniffFormat(data)
	}

	b := newBuilder(source)
	switch format {
	case FormatText:
		err = b.parseText(data)
	case FormatJSON:
		err = b.parseJSON(data)
	default:
		err = &LoadError{Source: source, Err: fmt.Errorf("unsupported graph format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	return b.resolve(reg)
}

// sniffFormat picks json when the first non-whitespace byte opens an
// object, text otherwise.
func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatText
}

type builder struct {
	source  string
	targets map[label.Label]*Target
	edges   []Edge
}

func newBuilder(source string) *builder {
	return &builder{source: source, targets: make(map[label.Label]*Target)}
}

func (b *builder) addTarget(l label.Label) {
	if _, ok := b.targets[l]; !ok {
		b.targets[l] = &Target{Label: l}
	}
}

func (b *builder) addEdge(from, to label.Label) {
	b.addTarget(from)
	b.addTarget(to)
	b.edges = append(b.edges, Edge{From: from, To: to})
}

func (b *builder) errf(line int, format string, args ...any) error {
	return &LoadError{Source: b.source, Line: line, Err: fmt.Errorf(format, args...)}
}

func (b *builder) parseText(data []byte) error {
	for i, raw := range strings.Split(string(data), "\n") {
		n := i + 1
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case isDotFurniture(line):
			continue
		}

		if idx := strings.Index(line, "->"); idx >= 0 {
			from, err := parseDotToken(line[:idx])
			if err != nil {
				return b.errf(n, "edge source: %v", err)
			}
			to, err := parseDotToken(line[idx+2:])
			if err != nil {
				return b.errf(n, "edge destination: %v", err)
			}
			b.addEdge(from, to)
			continue
		}

		if strings.HasPrefix(line, `"`) {
			// Node declaration from DOT output: a target with no
			// outgoing edges still participates in resolution.
			l, err := parseDotToken(line)
			if err != nil {
				return b.errf(n, "node declaration: %v", err)
			}
			b.addTarget(l)
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return b.errf(n, "expected %q, got %q", "<from> <to>", line)
		}
		from, err := label.Parse(fields[0])
		if err != nil {
			return b.errf(n, "edge source: %v", err)
		}
		to, err := label.Parse(fields[1])
		if err != nil {
			return b.errf(n, "edge destination: %v", err)
		}
		b.addEdge(from, to)
	}
	return nil
}

// isDotFurniture reports whether line is DOT structure around the edge
// list rather than graph content.
func isDotFurniture(line string) bool {
	switch {
	case strings.HasPrefix(line, "digraph"),
		strings.HasSuffix(line, "{"),
		line == "}",
		strings.HasPrefix(line, "node ["),
		strings.HasPrefix(line, "edge ["),
		strings.HasPrefix(line, "graph ["):
		return true
	}
	return false
}

// parseDotToken strips DOT quoting and the trailing semicolon from one
// side of an edge statement and parses the remaining label.
func parseDotToken(s string) (label.Label, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return label.Parse(s)
}

type jsonGraph struct {
	Targets []jsonTarget `json:"targets"`
	Edges   []jsonEdge   `json:"edges"`
}

type jsonTarget struct {
	ID      string `json:"id"`
	Package string `json:"package"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (b *builder) parseJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var jg jsonGraph
	if err := dec.Decode(&jg); err != nil {
		return &LoadError{Source: b.source, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	for i, jt := range jg.Targets {
		l, err := label.Parse(jt.ID)
		if err != nil {
			return b.errf(0, "targets[%d]: %v", i, err)
		}
		if jt.Package != "" {
			declared := strings.TrimPrefix(jt.Package, "//")
			if declared != l.Pkg {
				return b.errf(0, "targets[%d]: %s declares package %q but its label places it in %q", i, l, jt.Package, l.PackagePath())
			}
		}
		b.addTarget(l)
	}
	for i, je := range jg.Edges {
		from, err := label.Parse(je.From)
		if err != nil {
			return b.errf(0, "edges[%d].from: %v", i, err)
		}
		to, err := label.Parse(je.To)
		if err != nil {
			return b.errf(0, "edges[%d].to: %v", i, err)
		}
		b.addEdge(from, to)
	}
	return nil
}

// resolve maps every loaded target to its owning package's groups. Any
// target whose package matches no known package path is collected, and
// one or more such targets abort the load.
func (b *builder) resolve(reg *policy.Registry) (*Graph, error) {
	var unresolved []UnresolvedTarget
	for l, t := range b.targets {
		if _, ok := reg.ResolvePackage(l.Pkg); !ok {
			unresolved = append(unresolved, UnresolvedTarget{Target: l})
			continue
		}
		groups := reg.GroupsContaining(l.Pkg)
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		t.Groups = names
	}
	if len(unresolved) > 0 {
		sort.Slice(unresolved, func(i, j int) bool {
			return label.Compare(unresolved[i].Target, unresolved[j].Target) < 0
		})
		return nil, &LoadError{Source: b.source, Unresolved: unresolved}
	}
	return &Graph{targets: b.targets, edges: b.edges}, nil
}
