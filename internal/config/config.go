// Package config collects the knobs shared by the CLI driver and the
// interactive shell. Defaults come from the environment (loaded from .env by
// the bootstrap); flags override them per invocation.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/asynkron/patchview/pkg/patch"
)

// Config mirrors the top level knobs of the tool while keeping room for
// injecting alternative values during tests.
type Config struct {
	// DiffPath is the unified diff to load; empty means read from stdin.
	DiffPath string
	// WorkingDir is the root against which header paths are resolved.
	WorkingDir string
	// Strict fails the apply on the first unanchorable hunk. Lenient mode
	// skips such hunks and reports them.
	Strict bool
	// FuzzyContext is the ring-search radius of the applier.
	FuzzyContext int
	// Backup leaves a .bak sibling next to files written in place.
	Backup bool
	// Theme forces the shell palette: "dark", "light" or "auto".
	Theme string
	// LogLevel gates the structured logger.
	LogLevel string
}

// FromEnv builds a Config from PATCHVIEW_* environment variables. Strict is
// always true and Backup is on unless PATCHVIEW_NO_BACKUP is set; the other
// fields keep their zero values where the environment is silent.
func FromEnv() Config {
	cfg := Config{}
	if v, ok := os.LookupEnv("PATCHVIEW_FUZZY_CONTEXT"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.FuzzyContext = n
		}
	}
	cfg.Backup = os.Getenv("PATCHVIEW_NO_BACKUP") == ""
	cfg.Theme = strings.TrimSpace(os.Getenv("PATCHVIEW_THEME"))
	cfg.LogLevel = strings.TrimSpace(os.Getenv("PATCHVIEW_LOG_LEVEL"))
	cfg.Strict = true
	return cfg
}

// SetDefaults applies the defaults for anything the environment and flags
// left unset.
func (c *Config) SetDefaults() {
	if c.WorkingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.WorkingDir = wd
		}
	}
	if c.FuzzyContext <= 0 {
		c.FuzzyContext = patch.DefaultFuzzyContext
	}
	if c.Theme == "" {
		c.Theme = "auto"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

// Validate performs lightweight validation of user supplied options.
func (c *Config) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
	default:
		return errors.New(`theme must be "auto", "dark" or "light"`)
	}
	if c.FuzzyContext < 0 {
		return errors.New("fuzzy context must not be negative")
	}
	return nil
}

// EngineOptions translates the config into the engine's option struct.
func (c Config) EngineOptions() patch.Options {
	return patch.Options{Strict: c.Strict, FuzzyContext: c.FuzzyContext}
}
