package policy

import "errors"

// Sentinel causes carried inside a ConfigError. Callers classify with
// errors.Is.
var (
	ErrDuplicateGroupName = errors.New("duplicate group name")
	ErrEmptyPatternSet    = errors.New("group has no include patterns")
	ErrEmptyRationale     = errors.New("rationale must not be blank")
	ErrUnknownGroup       = errors.New("unknown group")
)

// ConfigError is an invalid policy configuration: the run aborts before
// any checking happens (exit code 2). Entry identifies the offending
// piece of the policy so the author can find it.
type ConfigError struct {
	File  string // policy file path, when known
	Entry string // offending entry: group name, allow edge, exception
	Err   error
}

func (e *ConfigError) Error() string {
	msg := "invalid policy"
	if e.File != "" {
		msg += " " + e.File
	}
	if e.Entry != "" {
		msg += ": " + e.Entry
	}
	return msg + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }
