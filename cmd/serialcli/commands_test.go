package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlly11/embedded-cli/cli"
)

func testConfig(commands ...commandConfig) Config {
	cfg := defaultConfig()
	cfg.Commands = commands
	return cfg
}

func TestNewSessionRegistersCommands(t *testing.T) {
	session, err := newSession(testConfig(commandConfig{Name: "led", Help: "Toggle LED", Reply: "LED on"}))
	require.NoError(t, err)

	var names []string
	for _, c := range session.Registry().Commands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"help", "history", "version", "led"}, names)
	assert.Equal(t, cli.DefaultPrompt, session.Prompt())
}

func TestNewSessionUsesConfiguredLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 3
	cfg.HelpSize = 16
	cfg.Prompt = "> "

	session, err := newSession(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, session.Registry().Cap())
	assert.Equal(t, 16, session.Registry().HelpSize())
	assert.Equal(t, "> ", session.Prompt())

	// Full: the built-ins take every slot.
	assert.ErrorIs(t, session.AddCommand("led", replyHandler("", 0), ""), cli.ErrCapacityExceeded)
}

func TestNewSessionRejectsUnregistrableCommand(t *testing.T) {
	cfg := testConfig(commandConfig{Name: "help"})

	_, err := newSession(cfg)
	assert.ErrorIs(t, err, cli.ErrDuplicateName)
}

func TestHelpCommandListsCommands(t *testing.T) {
	session, err := newSession(testConfig(
		commandConfig{Name: "led", Help: "Toggle LED"},
		commandConfig{Name: "ping"},
	))
	require.NoError(t, err)

	var out bytes.Buffer
	code, err := session.Registry().Dispatch("help", &out)
	require.NoError(t, err)
	assert.Equal(t, cli.Success, code)

	assert.Equal(t, "help     List commands\r\n"+
		"history  Show history\r\n"+
		"version  Show version\r\n"+
		"led      Toggle LED\r\n"+
		"ping", out.String())
}

func TestHistoryCommand(t *testing.T) {
	session, err := newSession(testConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = session.Registry().Dispatch("history", &out)
	require.NoError(t, err)
	assert.Equal(t, "(empty)", out.String())

	port := newScriptPort("version\rhistory\r", true)
	logger, _ := newTestLogger()
	require.NoError(t, runSession(context.Background(), session, port, time.Millisecond, logger))

	assert.Equal(t, "\r\ncli> version"+
		"\r\ncli> serialcli v0.1.0\r\ncli> history"+
		"\r\ncli> 1  version\r\ncli> ", port.out.String())
}

func TestVersionCommand(t *testing.T) {
	session, err := newSession(testConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = session.Registry().Dispatch("version", &out)
	require.NoError(t, err)
	assert.Equal(t, fullTitle(), out.String())
}

func TestReplyCommand(t *testing.T) {
	session, err := newSession(testConfig(
		commandConfig{Name: "led", Reply: "LED on"},
		commandConfig{Name: "fault", Code: 3},
	))
	require.NoError(t, err)

	var out bytes.Buffer
	code, err := session.Registry().Dispatch("led", &out)
	require.NoError(t, err)
	assert.Equal(t, cli.Success, code)
	assert.Equal(t, "LED on", out.String())

	out.Reset()
	code, err = session.Registry().Dispatch("fault", &out)
	require.NoError(t, err)
	assert.Equal(t, cli.ReturnCode(3), code)
	assert.Empty(t, out.String())
}

func TestSuggestCommand(t *testing.T) {
	session, err := newSession(testConfig(commandConfig{Name: "reset"}))
	require.NoError(t, err)
	reg := session.Registry()

	tests := []struct {
		name string
		want string
	}{
		{"halp", "help"},
		{"HELP", "help"},
		{"versoin", "version"},
		{"histroy", "history"},
		{"rest", "reset"},
		{"xyzzy", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, suggestCommand(reg, tc.name))
		})
	}
}
