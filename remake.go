package remake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Flags for modifying the behavior of Run.
type Flags struct {
	File       string // rule file, relative to Dir
	Dir        string // directory to run in
	Target     string // target to build; the first rule when empty
	Quiet      bool
	Dump       bool
	DumpFormat string
	DryRun     bool
	Style      string
	Shell      string // "builtin" selects the built-in interpreter
	NoCache    bool
	Verbose    bool
}

// BuiltinShell selects the built-in shell interpreter for Flags.Shell.
const BuiltinShell = "builtin"

// Run compiles the rule file and brings the requested target up to date.
// Echoed commands, their output and dumps are written to out. When the
// target was already up to date the returned error wraps ErrUpToDate.
func Run(out io.Writer, flags Flags) (err error) {
	dir := flags.Dir
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}
	file := flags.File
	if file == "" {
		file = DefaultRuleFile
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, file)
	}
	if !exists(path) {
		return &DiscoveryError{Path: file, Err: os.ErrNotExist}
	}

	fsys := DirFS{Dir: dir}
	c := &Compiler{FS: fsys}
	if !flags.NoCache {
		c.Cache = NewCache(dir)
		defer c.Cache.Wait()
	}
	rs, err := c.Compile(path)
	if err != nil {
		return err
	}

	if flags.Dump {
		return Dump(out, &rs, flags.DumpFormat)
	}

	target := flags.Target
	if target == "" {
		target = rs.MainTarget()
	}
	if target == "" {
		return &ResolutionError{Msg: fmt.Sprintf("%s: no rules and no target", file)}
	}

	printer, err := NewPrinter(flags.Style, out)
	if err != nil {
		return err
	}
	if pp, ok := printer.(*ProgressPrinter); ok {
		defer func() {
			if cerr := pp.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	opts := BuildOptions{
		Quiet:  flags.Quiet,
		DryRun: flags.DryRun,
		Shell:  flags.Shell,
	}
	var ex Executor = &ProcessExecutor{Dir: dir, Stdin: os.Stdin, Stdout: out, Stderr: os.Stderr}
	if flags.Shell == BuiltinShell {
		ex = &InterpExecutor{Dir: dir, Stdin: os.Stdin, Stdout: out, Stderr: os.Stderr}
		opts.Shell = "sh"
	}

	ran, err := NewBuilder(&rs, fsys, ex, printer, opts).Build(target)
	if err != nil {
		return err
	}
	if !ran {
		return fmt.Errorf("'%s' is %w", target, ErrUpToDate)
	}
	return nil
}
