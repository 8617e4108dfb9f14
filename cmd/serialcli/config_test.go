package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlly11/embedded-cli/cli"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serialcli.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, cli.DefaultPrompt, cfg.Prompt)
	assert.Equal(t, cli.DefaultCapacity, cfg.Capacity)
	assert.Equal(t, cli.DefaultHelpSize, cfg.HelpSize)
	assert.Equal(t, defaultPollInterval, cfg.PollInterval)
	assert.Empty(t, cfg.Listen)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
prompt = "mcu> "
capacity = 6
poll_interval = "20ms"
listen = "unix:/tmp/mcu.sock"

[[command]]
name = "led"
help = "Toggle LED"
reply = "LED on"

[[command]]
name = "reset"
help = "Reset board"
code = 2
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mcu> ", cfg.Prompt)
	assert.Equal(t, 6, cfg.Capacity)
	assert.Equal(t, 20*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "unix:/tmp/mcu.sock", cfg.Listen)
	// Keys the file leaves out keep their defaults.
	assert.Equal(t, cli.DefaultHelpSize, cfg.HelpSize)
	assert.Equal(t, defaultHistoryFile, cfg.HistoryFile)

	assert.Equal(t, []commandConfig{
		{Name: "led", Help: "Toggle LED", Reply: "LED on"},
		{Name: "reset", Help: "Reset board", Code: 2},
	}, cfg.Commands)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
prompt = "> "
baud_rate = 115200
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baud_rate")
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, `prompt = `)

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"long prompt", func(c *Config) { c.Prompt = strings.Repeat("p", cli.MaxPromptLength+1) }, "prompt is"},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "capacity must be positive"},
		{"zero help size", func(c *Config) { c.HelpSize = 0 }, "help_size must be positive"},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, "poll_interval must be positive"},
		{"help size below built-ins", func(c *Config) { c.HelpSize = 4 }, "too small for built-in"},
		{
			"too many commands",
			func(c *Config) {
				c.Capacity = 4
				c.Commands = []commandConfig{{Name: "a"}, {Name: "b"}}
			},
			"cannot hold 5 commands",
		},
		{"empty name", func(c *Config) { c.Commands = []commandConfig{{Name: ""}} }, cli.ErrEmptyName.Error()},
		{
			"long name",
			func(c *Config) { c.Commands = []commandConfig{{Name: strings.Repeat("n", cli.MaxNameLength+1)}} },
			cli.ErrNameTooLong.Error(),
		},
		{"punctuation in name", func(c *Config) { c.Commands = []commandConfig{{Name: "led-on"}} }, "only letters and digits"},
		{"shadows built-in", func(c *Config) { c.Commands = []commandConfig{{Name: "help"}} }, cli.ErrDuplicateName.Error()},
		{
			"duplicate",
			func(c *Config) { c.Commands = []commandConfig{{Name: "led"}, {Name: "led"}} },
			cli.ErrDuplicateName.Error(),
		},
		{
			"long help",
			func(c *Config) { c.Commands = []commandConfig{{Name: "led", Help: strings.Repeat("h", cli.DefaultHelpSize+1)}} },
			cli.ErrHelpTooLong.Error(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfigValidateReportsEveryProblem(t *testing.T) {
	cfg := defaultConfig()
	cfg.Capacity = 0
	cfg.PollInterval = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestLoadConfigurationFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
prompt = "file> "
listen = "unix:/tmp/file.sock"
`)

	cfg, err := loadConfiguration(arguments{
		configPath: path,
		prompt:     "",
		promptSet:  true,
		listen:     "tcp:127.0.0.1:0",
	})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Prompt)
	assert.Equal(t, "tcp:127.0.0.1:0", cfg.Listen)
}

func TestLoadConfigurationWithoutFile(t *testing.T) {
	cfg, err := loadConfiguration(arguments{})
	require.NoError(t, err)
	assert.Equal(t, cli.DefaultPrompt, cfg.Prompt)
}

func TestLoadConfigurationRejectsInvalid(t *testing.T) {
	_, err := loadConfiguration(arguments{prompt: strings.Repeat("x", 40), promptSet: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, filepath.Join(home, ".serialcli_history"), expandHome("~/.serialcli_history"))
	assert.Equal(t, "/var/lib/cli", expandHome("/var/lib/cli"))
	assert.Equal(t, "~other/file", expandHome("~other/file"))
	assert.Equal(t, "", expandHome(""))
}
