package remake

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// DiscoveryError reports a rule file that could not be found.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("rule file %s not found: %s", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// SyntaxError reports a rule file that does not follow the grammar. No
// rules are produced from a file with a syntax error.
type SyntaxError struct {
	Pos lexer.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg)
}

// ResolutionError reports a target or dependency that cannot be resolved to
// a rule or an existing file, or a dependency cycle.
type ResolutionError struct {
	Target string
	Chain  []string
	Msg    string
}

func (e *ResolutionError) Error() string {
	if len(e.Chain) > 1 {
		return fmt.Sprintf("%s (%s)", e.Msg, strings.Join(e.Chain, " -> "))
	}
	return e.Msg
}

// ExecutionError reports a command that did not run to a successful exit.
type ExecutionError struct {
	Target  string
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("'%s': error during recipe '%s': %s", e.Target, e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ConfigError reports a configuration file that could not be decoded.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
