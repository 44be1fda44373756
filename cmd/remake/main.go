package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/knusbaum/remake"
	"github.com/spf13/pflag"
)

const version = "0.1.0"

func main() {
	var flags remake.Flags
	pflag.StringVarP(&flags.File, "file", "f", remake.DefaultRuleFile, "the rule file to read and execute")
	pflag.StringVarP(&flags.Dir, "directory", "C", "", "run from directory")
	pflag.BoolVarP(&flags.Quiet, "quiet", "q", false, "don't echo commands")
	pflag.BoolVarP(&flags.Dump, "dump", "d", false, "dump the expanded rules to stdout")
	pflag.StringVar(&flags.DumpFormat, "dump-format", "repr", "dump format (repr, yaml, remaker)")
	pflag.BoolVarP(&flags.DryRun, "dry-run", "n", false, "print commands without executing them")
	pflag.StringVarP(&flags.Style, "style", "s", "basic", "printer style to use (basic, steps, progress)")
	pflag.StringVar(&flags.Shell, "shell", "", "run commands with this shell, or 'builtin' for the built-in one")
	pflag.BoolVar(&flags.NoCache, "no-cache", false, "don't read or write the rule cache")
	pflag.BoolVarP(&flags.Verbose, "verbose", "v", false, "run verbosely")
	help := pflag.BoolP("help", "h", false, "show this help message")
	showVersion := pflag.Bool("version", false, "show version information")
	pflag.Parse()

	log.SetFlags(0)
	log.SetPrefix("remake: ")

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Println("remake version", version)
		os.Exit(0)
	}

	cfg, err := remake.LoadConfig(remake.UserConfigFile(), filepath.Join(flags.Dir, remake.LocalConfigFile))
	if err != nil {
		log.Fatalf("%s", err)
	}
	explicit := make(map[string]bool)
	pflag.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = true
	})
	cfg.Apply(&flags, explicit)
	remake.Verbose = flags.Verbose

	switch args := pflag.Args(); len(args) {
	case 0:
	case 1:
		flags.Target = args[0]
	default:
		log.Fatalf("expected at most one target, got %d", len(args))
	}

	err = remake.Run(os.Stdout, flags)
	if err != nil {
		log.Printf("%s", err)
		if !errors.Is(err, remake.ErrUpToDate) {
			os.Exit(1)
		}
	}
}
