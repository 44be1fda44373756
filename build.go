package remake

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/zyedidia/generic/mapset"
)

// Verbose enables logging of the build's decisions.
var Verbose bool

// ErrUpToDate is returned, wrapped, when a build had nothing to do.
var ErrUpToDate = errors.New("up to date")

// BuildOptions modify how a Builder runs commands.
type BuildOptions struct {
	Quiet  bool   // don't echo commands
	DryRun bool   // echo commands without running them
	Shell  string // run each command as `Shell -c command`
}

// A Builder brings targets of a compiled RuleSet up to date. It never
// modifies the RuleSet.
type Builder struct {
	rules   *RuleSet
	fs      FileSystem
	exec    Executor
	printer Printer
	opts    BuildOptions

	// ran records, for every resolved target, whether its commands ran.
	ran      map[string]bool
	visiting mapset.Set[string]
	step     int
}

// NewBuilder returns a Builder for rs. rs must not change while it is in use.
func NewBuilder(rs *RuleSet, fsys FileSystem, ex Executor, p Printer, opts BuildOptions) *Builder {
	return &Builder{
		rules:    rs,
		fs:       fsys,
		exec:     ex,
		printer:  p,
		opts:     opts,
		ran:      make(map[string]bool),
		visiting: mapset.New[string](),
	}
}

// Build brings target up to date, running the commands of every stale rule
// it depends on first. It reports whether any rule ran, target or not.
func (b *Builder) Build(target string) (bool, error) {
	r, ok := b.rules.Lookup(target)
	if !ok {
		return false, &ResolutionError{
			Target: target,
			Msg:    fmt.Sprintf("no rule to make target '%s'", target),
		}
	}
	start := b.step
	_, err := b.resolve(r, nil)
	return b.step > start, err
}

func (b *Builder) resolve(r *Rule, depchain []string) (bool, error) {
	if ran, ok := b.ran[r.Target]; ok {
		return ran, nil
	}
	dc := append(append([]string(nil), depchain...), r.Target)
	if b.visiting.Has(r.Target) {
		return false, &ResolutionError{
			Target: r.Target,
			Chain:  dc,
			Msg:    fmt.Sprintf("found dependency cycle at '%s'", r.Target),
		}
	}
	b.visiting.Put(r.Target)
	defer b.visiting.Remove(r.Target)

	stale := r.Phony || len(r.Dependencies) == 0
	for _, d := range r.Dependencies {
		if dr, ok := b.rules.Lookup(d); ok {
			ran, err := b.resolve(dr, dc)
			if err != nil {
				return false, err
			}
			// A dry run never updates files, so a dependency that would have
			// been rebuilt is taken as newer.
			if ran && b.opts.DryRun {
				stale = true
				continue
			}
		} else if _, ok := b.fs.ModTime(d); !ok {
			return false, &ResolutionError{
				Target: d,
				Chain:  append(dc, d),
				Msg:    fmt.Sprintf("dependency '%s' of '%s' has no rule and does not exist", d, r.Target),
			}
		}
		if b.older(r.Target, d) {
			if Verbose {
				log.Printf("'%s' is older than '%s'", r.Target, d)
			}
			stale = true
		}
	}

	if !stale {
		if Verbose {
			log.Printf("'%s' is up to date", r.Target)
		}
		b.ran[r.Target] = false
		return false, nil
	}
	if err := b.run(r); err != nil {
		return false, err
	}
	b.ran[r.Target] = true
	return true, nil
}

// older reports whether target's modification time is strictly before
// dep's. Missing files have the zero time.
func (b *Builder) older(target, dep string) bool {
	return b.modTime(target).Before(b.modTime(dep))
}

func (b *Builder) modTime(name string) time.Time {
	t, _ := b.fs.ModTime(name)
	return t
}

// run executes the commands of r in order, stopping at the first failure.
func (b *Builder) run(r *Rule) error {
	b.step++
	if Verbose {
		log.Printf("Building %s", r.Target)
	}
	defer b.printer.Done(r.Target)

	for _, c := range r.Commands {
		program, args, err := b.command(c.Text)
		if err != nil {
			return &ExecutionError{Target: r.Target, Command: c.Text, Err: err}
		}
		if program == "" {
			continue
		}
		if !b.opts.Quiet && !c.Quiet {
			b.printer.Print(c.Text, r.Target, b.step)
		}
		if b.opts.DryRun {
			continue
		}
		if err := b.exec.Run(program, args); err != nil {
			return &ExecutionError{Target: r.Target, Command: c.Text, Err: err}
		}
	}
	return nil
}

func (b *Builder) command(text string) (string, []string, error) {
	if b.opts.Shell != "" {
		return b.opts.Shell, []string{"-c", text}, nil
	}
	words, err := shellquote.Split(text)
	if err != nil || len(words) == 0 {
		return "", nil, err
	}
	return words[0], words[1:], nil
}
