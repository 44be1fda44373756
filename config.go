package remake

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// DefaultRuleFile is the rule file read when none is given.
const DefaultRuleFile = "remaker"

// LocalConfigFile is read from the run directory.
const LocalConfigFile = ".remake.toml"

// Config holds settings that may be given in a configuration file. Unset
// fields leave the corresponding flag alone.
type Config struct {
	File       *string `toml:"file"`
	Quiet      *bool   `toml:"quiet"`
	Style      *string `toml:"style"`
	Shell      *string `toml:"shell"`
	Cache      *bool   `toml:"cache"`
	Verbose    *bool   `toml:"verbose"`
	DumpFormat *string `toml:"dump-format"`
}

// UserConfigFile returns the path of the per-user configuration file.
func UserConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "remake", "config.toml")
}

// LoadConfig reads the given configuration files in order, later files
// overriding earlier ones. Missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	c := &Config{}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, err
		}
		var next Config
		if err := toml.Unmarshal(data, &next); err != nil {
			return nil, &ConfigError{Path: p, Err: err}
		}
		if Verbose {
			log.Printf("loaded configuration from %s", p)
		}
		c.merge(&next)
	}
	return c, nil
}

func (c *Config) merge(o *Config) {
	if o.File != nil {
		c.File = o.File
	}
	if o.Quiet != nil {
		c.Quiet = o.Quiet
	}
	if o.Style != nil {
		c.Style = o.Style
	}
	if o.Shell != nil {
		c.Shell = o.Shell
	}
	if o.Cache != nil {
		c.Cache = o.Cache
	}
	if o.Verbose != nil {
		c.Verbose = o.Verbose
	}
	if o.DumpFormat != nil {
		c.DumpFormat = o.DumpFormat
	}
}

// Apply copies the settings of c into flags, except those marked as set
// explicitly.
func (c *Config) Apply(flags *Flags, explicit map[string]bool) {
	if c.File != nil && !explicit["file"] {
		flags.File = *c.File
	}
	if c.Quiet != nil && !explicit["quiet"] {
		flags.Quiet = *c.Quiet
	}
	if c.Style != nil && !explicit["style"] {
		flags.Style = *c.Style
	}
	if c.Shell != nil && !explicit["shell"] {
		flags.Shell = *c.Shell
	}
	if c.Cache != nil && !explicit["no-cache"] {
		flags.NoCache = !*c.Cache
	}
	if c.Verbose != nil && !explicit["verbose"] {
		flags.Verbose = *c.Verbose
	}
	if c.DumpFormat != nil && !explicit["dump-format"] {
		flags.DumpFormat = *c.DumpFormat
	}
}
