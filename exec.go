package remake

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"mvdan.cc/sh/interp"
	"mvdan.cc/sh/syntax"
)

// An Executor runs one command to completion. A non-nil error means the
// command could not be started, exited non-zero or was killed by a signal.
type Executor interface {
	Run(program string, args []string) error
}

// ProcessExecutor runs commands as child processes.
type ProcessExecutor struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts program with args in Dir and waits for it to exit.
func (e *ProcessExecutor) Run(program string, args []string) error {
	cmd := exec.Command(program, args...)
	cmd.Dir = e.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return cmd.Run()
}

// InterpExecutor runs commands with a built-in POSIX shell interpreter
// instead of spawning a shell. An invocation of the form `<shell> -c script`
// interprets script; anything else is quoted back into a single command.
type InterpExecutor struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (e *InterpExecutor) Run(program string, args []string) error {
	script := shellquote.Join(append([]string{program}, args...)...)
	if len(args) == 2 && args[0] == "-c" {
		script = args[1]
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return err
	}
	opts := []func(*interp.Runner) error{interp.StdIO(e.Stdin, e.Stdout, e.Stderr)}
	if e.Dir != "" {
		opts = append(opts, interp.Dir(e.Dir))
	}
	r, err := interp.New(opts...)
	if err != nil {
		return err
	}
	r.Reset()
	return r.Run(context.Background(), prog)
}
