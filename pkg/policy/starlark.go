package policy

import (
	"fmt"

	"go.starlark.net/starlark"
)

// ParseStarlark evaluates a Starlark policy file. The file runs with
// four builtins that feed the same model as the YAML form:
//
//	packages("//third_party/...", ...)
//	group(name = "ic-os", rationale = "...", packages = ["//ic-os/..."])
//	allow("ic-os", ["release"])
//	exception(from_target = "//a:b", to = "//c", rationale = "...")
//
// Starlark is hermetic (no I/O, no imports beyond the file itself), so
// a .star policy stays as auditable as the YAML one while allowing list
// construction and comments in Bazel's own configuration dialect.
func ParseStarlark(src []byte, path string) (*Policy, error) {
	var pf policyFile

	predeclared := starlark.StringDict{
		"packages":  starlark.NewBuiltin("packages", makePackagesBuiltin(&pf)),
		"group":     starlark.NewBuiltin("group", makeGroupBuiltin(&pf)),
		"allow":     starlark.NewBuiltin("allow", makeAllowBuiltin(&pf)),
		"exception": starlark.NewBuiltin("exception", makeExceptionBuiltin(&pf)),
	}

	thread := &starlark.Thread{
		Name:  "policy " + path,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	if _, err := starlark.ExecFile(thread, path, src, predeclared); err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return nil, &ConfigError{File: path, Err: fmt.Errorf("starlark: %s", evalErr.Backtrace())}
		}
		return nil, &ConfigError{File: path, Err: fmt.Errorf("starlark: %v", err)}
	}

	return build(pf, path)
}

func makePackagesBuiltin(pf *policyFile) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		for i, arg := range args {
			s, ok := starlark.AsString(arg)
			if !ok {
				return nil, fmt.Errorf("%s: argument %d is not a string", b.Name(), i+1)
			}
			pf.Packages = append(pf.Packages, s)
		}
		return starlark.None, nil
	}
}

func makeGroupBuiltin(pf *policyFile) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name, rationale string
		var pkgs starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"name", &name, "rationale", &rationale, "packages", &pkgs); err != nil {
			return nil, err
		}
		patterns, err := stringList(pkgs)
		if err != nil {
			return nil, fmt.Errorf("%s %q: packages: %v", b.Name(), name, err)
		}
		pf.Groups = append(pf.Groups, groupEntry{Name: name, Rationale: rationale, Packages: patterns})
		return starlark.None, nil
	}
}

func makeAllowBuiltin(pf *policyFile) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var from string
		var to starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "from_group", &from, "to", &to); err != nil {
			return nil, err
		}
		var targets []string
		if s, ok := starlark.AsString(to); ok {
			targets = []string{s}
		} else {
			list, err := stringList(to)
			if err != nil {
				return nil, fmt.Errorf("%s %q: to: %v", b.Name(), from, err)
			}
			targets = list
		}
		if pf.Allow == nil {
			pf.Allow = make(map[string][]string)
		}
		pf.Allow[from] = append(pf.Allow[from], targets...)
		return starlark.None, nil
	}
}

func makeExceptionBuiltin(pf *policyFile) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var from, to, rationale string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"from_target", &from, "to", &to, "rationale", &rationale); err != nil {
			return nil, err
		}
		pf.Exceptions = append(pf.Exceptions, exceptionEntry{From: from, To: to, Rationale: rationale})
		return starlark.None, nil
	}
}

// stringList converts a Starlark list or tuple of strings.
func stringList(v starlark.Value) ([]string, error) {
	seq, ok := v.(starlark.Sequence)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings, got %s", v.Type())
	}
	out := make([]string, 0, seq.Len())
	iter := seq.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("expected a string element, got %s", elem.Type())
		}
		out = append(out, s)
	}
	return out, nil
}
