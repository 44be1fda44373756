package remake

import (
	"errors"
	"io/fs"
	"log"
	"os"
)

// A ParseFunc turns rule file text into items. Parse is the default.
type ParseFunc func(filename string, src []byte) ([]Item, error)

// A Compiler turns a rule file into a fully expanded RuleSet, going through
// the cache when it has one.
type Compiler struct {
	FS    FileSystem
	Cache *Cache    // nil disables the incremental cache
	Parse ParseFunc // nil means Parse
}

// Compile returns the expanded RuleSet for the rule file at path. A fresh
// compilation is saved to the cache in the background; callers must call
// Cache.Wait before exiting.
func (c *Compiler) Compile(path string) (RuleSet, error) {
	if c.Cache != nil {
		rs, err := c.Cache.Load(path)
		if err == nil {
			if Verbose {
				log.Printf("using cached rules from %s", c.Cache.Path)
			}
			return rs, nil
		}
		if Verbose {
			log.Printf("cache miss: %s", err)
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RuleSet{}, &DiscoveryError{Path: path, Err: err}
		}
		return RuleSet{}, err
	}
	rs, err := c.CompileSource(path, src)
	if err != nil {
		return RuleSet{}, err
	}
	if c.Cache != nil {
		c.Cache.SaveAsync(path, rs)
	}
	return rs, nil
}

// CompileSource runs the whole pipeline over src: parse, assemble, expand
// wildcards, generate pattern rules, resolve commands and fold .PHONY.
func (c *Compiler) CompileSource(filename string, src []byte) (RuleSet, error) {
	parse := c.Parse
	if parse == nil {
		parse = Parse
	}
	items, err := parse(filename, src)
	if err != nil {
		return RuleSet{}, err
	}
	rs := ExpandWildcards(Assemble(items))
	rs, err = GeneratePatternRules(rs, c.FS)
	if err != nil {
		return RuleSet{}, err
	}
	rs, err = ResolveCommands(rs, c.FS)
	if err != nil {
		return RuleSet{}, err
	}
	return NormalizePhony(rs), nil
}
