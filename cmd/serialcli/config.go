// =============================================================================
// config.go - Host Configuration
// =============================================================================
//
// Settings come from three places, applied in order:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional TOML file named with --config
//  3. Command-line flags (--prompt, --listen)
//
// The result is validated once, before any session is created, so a bad
// file fails at startup instead of on the first connection.
//
// =============================================================================

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dlly11/embedded-cli/cli"
)

const (
	// defaultHistoryFile is the readline history file used in line mode.
	defaultHistoryFile = "~/.serialcli_history"

	// defaultPollInterval is how long the poll loop sleeps when a
	// transport has no data and cannot be waited on.
	defaultPollInterval = 5 * time.Millisecond
)

// GO CONCEPT: Struct Tags
// -----------------------
// The backtick strings after each field (`toml:"help_size"`) are struct
// tags: metadata the compiler ignores but libraries read through
// reflection. BurntSushi/toml uses them to map snake_case keys in the
// file onto Go's CamelCase field names. Only exported (capitalized)
// fields can be filled this way.
//
// Compare with Python: similar to Field(alias="help_size") on a pydantic
// model.

// commandConfig declares a command that prints a fixed reply.
type commandConfig struct {
	Name  string `toml:"name"`
	Help  string `toml:"help"`
	Reply string `toml:"reply"`
	Code  int    `toml:"code"`
}

// Config holds the settings for every session the host creates.
type Config struct {
	Prompt       string          `toml:"prompt"`
	Capacity     int             `toml:"capacity"`
	HelpSize     int             `toml:"help_size"`
	PollInterval time.Duration   `toml:"poll_interval"`
	HistoryFile  string          `toml:"history_file"`
	Listen       string          `toml:"listen"`
	Commands     []commandConfig `toml:"command"`
}

func defaultConfig() Config {
	return Config{
		Prompt:       cli.DefaultPrompt,
		Capacity:     cli.DefaultCapacity,
		HelpSize:     cli.DefaultHelpSize,
		PollInterval: defaultPollInterval,
		HistoryFile:  defaultHistoryFile,
	}
}

// loadConfig reads path over the defaults. Keys the file sets replace the
// default; keys it leaves out keep it. Unknown keys are an error so a typo
// does not silently fall back to a default.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return cfg, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks the configuration against the limits of the cli package.
// Command lists are checked here rather than left to Registry.Add so every
// problem in the file is reported together.
func (c Config) Validate() error {
	var errs []error

	if len(c.Prompt) > cli.MaxPromptLength {
		errs = append(errs, fmt.Errorf("prompt is %d bytes, limit is %d", len(c.Prompt), cli.MaxPromptLength))
	}
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("capacity must be positive, got %d", c.Capacity))
	}
	if c.HelpSize <= 0 {
		errs = append(errs, fmt.Errorf("help_size must be positive, got %d", c.HelpSize))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}

	builtins := builtinCommands()
	if need := len(builtins) + len(c.Commands); c.Capacity > 0 && need > c.Capacity {
		errs = append(errs, fmt.Errorf("capacity %d cannot hold %d commands (%d built in)", c.Capacity, need, len(builtins)))
	}
	for _, b := range builtins {
		if c.HelpSize > 0 && len(b.help) > c.HelpSize {
			errs = append(errs, fmt.Errorf("help_size %d is too small for built-in command %q", c.HelpSize, b.name))
		}
	}

	seen := make(map[string]bool, len(builtins)+len(c.Commands))
	for _, b := range builtins {
		seen[b.name] = true
	}
	for i, cmd := range c.Commands {
		if err := validateCommandName(cmd.Name); err != nil {
			errs = append(errs, fmt.Errorf("command[%d]: %w", i, err))
			continue
		}
		if seen[cmd.Name] {
			errs = append(errs, fmt.Errorf("command[%d] %q: %w", i, cmd.Name, cli.ErrDuplicateName))
		}
		seen[cmd.Name] = true
		if c.HelpSize > 0 && len(cmd.Help) > c.HelpSize {
			errs = append(errs, fmt.Errorf("command[%d] %q: %w", i, cmd.Name, cli.ErrHelpTooLong))
		}
	}

	return errors.Join(errs...)
}

// validateCommandName rejects names that could never be dispatched: only
// letters and digits reach the registry from a typed line.
func validateCommandName(name string) error {
	if name == "" {
		return cli.ErrEmptyName
	}
	if len(name) > cli.MaxNameLength {
		return cli.ErrNameTooLong
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
			return fmt.Errorf("name %q must contain only letters and digits", name)
		}
	}
	return nil
}

// loadConfiguration builds the effective configuration for args.
func loadConfiguration(args arguments) (Config, error) {
	cfg := defaultConfig()
	if args.configPath != "" {
		var err error
		if cfg, err = loadConfig(args.configPath); err != nil {
			return cfg, err
		}
	}

	if args.promptSet {
		cfg.Prompt = args.prompt
	}
	if args.listen != "" {
		cfg.Listen = args.listen
	}
	cfg.HistoryFile = expandHome(cfg.HistoryFile)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(homeDir(), rest)
	}
	return path
}

// homeDir returns the current user's home directory, or "" if it cannot be
// determined.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
