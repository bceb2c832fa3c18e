// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
)

func setupHome(t *testing.T, doc string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	if doc != "" {
		require.NoError(t, os.WriteFile(filepath.Join(home, config.FileName), []byte(doc), 0o644))
	}

	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	return home
}

func TestDeduplicateFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "empty args",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "only program and command",
			args:     []string{"autopr", "status"},
			expected: []string{"autopr", "status"},
		},
		{
			name:     "no duplicates",
			args:     []string{"autopr", "status", "--output", "text", "--titles"},
			expected: []string{"autopr", "status", "--output", "text", "--titles"},
		},
		{
			name:     "duplicate flag with value - last wins",
			args:     []string{"autopr", "status", "--output", "json", "--titles", "--output", "text"},
			expected: []string{"autopr", "status", "--titles", "--output", "text"},
		},
		{
			name:     "duplicate boolean flag",
			args:     []string{"autopr", "status", "--titles", "--watch", "--titles"},
			expected: []string{"autopr", "status", "--watch", "--titles"},
		},
		{
			name:     "duplicate flag with equals syntax",
			args:     []string{"autopr", "status", "--output=json", "--titles", "--output=text"},
			expected: []string{"autopr", "status", "--titles", "--output=text"},
		},
		{
			name:     "mixed equals and space syntax",
			args:     []string{"autopr", "status", "--output=json", "--output", "text"},
			expected: []string{"autopr", "status", "--output", "text"},
		},
		{
			name:     "positional args preserved",
			args:     []string{"autopr", "greet", "Ada", "--output", "json", "--output", "raw"},
			expected: []string{"autopr", "greet", "Ada", "--output", "raw"},
		},
		{
			name:     "short flags deduplicated",
			args:     []string{"autopr", "status", "-o", "json", "-o", "text"},
			expected: []string{"autopr", "status", "-o", "text"},
		},
		{
			name:     "stdin marker is positional",
			args:     []string{"autopr", "config", "write", "--diff", "-"},
			expected: []string{"autopr", "config", "write", "--diff", "-"},
		},
		{
			name:     "triple duplicate",
			args:     []string{"autopr", "status", "--interval", "1s", "--interval", "2s", "--interval", "3s"},
			expected: []string{"autopr", "status", "--interval", "3s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deduplicateFlags(tt.args))
		})
	}
}

func TestProcessSetOnly(t *testing.T) {
	setupHome(t, "status:\n  dash:\n    - --watch\n    - --interval 2s\n")

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "no set",
			args:     []string{"autopr", "status", "--watch"},
			expected: []string{"autopr", "status", "--watch"},
		},
		{
			name:     "set expanded in place",
			args:     []string{"autopr", "status", "@dash", "-o", "text"},
			expected: []string{"autopr", "status", "--watch", "--interval", "2s", "-o", "text"},
		},
		{
			name:     "unknown set kept as argument",
			args:     []string{"autopr", "status", "@nope"},
			expected: []string{"autopr", "status", "@nope"},
		},
		{
			name:     "handle-style name kept",
			args:     []string{"autopr", "greet", "@octocat"},
			expected: []string{"autopr", "greet", "@octocat"},
		},
		{
			name:     "bare at sign kept",
			args:     []string{"autopr", "greet", "@"},
			expected: []string{"autopr", "greet", "@"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, processSetOnly(tt.args))
		})
	}
}

func TestProcessCommandArgs(t *testing.T) {
	setupHome(t, "status:\n  dash:\n    - --interval 2s\n")

	got := processCommandArgs([]string{"autopr", "status", "@dash", "--interval", "9s"})
	assert.Equal(t, []string{"autopr", "status", "--interval", "9s"}, got)

	got = processCommandArgs([]string{"autopr", "completion", "bash", "bash"})
	assert.Equal(t, []string{"autopr", "completion", "bash", "bash"}, got)
}

func TestProcessCommandArgs_NoConfig(t *testing.T) {
	setupHome(t, "")

	got := processCommandArgs([]string{"autopr", "greet", "@octocat"})
	assert.Equal(t, []string{"autopr", "greet", "@octocat"}, got)
}

func TestHandleNakedCommand(t *testing.T) {
	assert.Equal(t, []string{"autopr", "--help"}, handleNakedCommand([]string{"autopr"}))
	assert.Equal(t, []string{"autopr", "greet"}, handleNakedCommand([]string{"autopr", "greet"}))
}

func TestHandleVersion(t *testing.T) {
	assert.True(t, handleVersion([]string{"autopr", "-v"}))
	assert.True(t, handleVersion([]string{"autopr", "status", "--version"}))
	assert.False(t, handleVersion([]string{"autopr", "status"}))
}

func TestRealMain_ExitCodes(t *testing.T) {
	setupHome(t, "")

	assert.Equal(t, 0, realMain([]string{"autopr", "--version"}))
	assert.Equal(t, 0, realMain([]string{"autopr", "greet", "Ada"}))
	assert.Equal(t, 2, realMain([]string{"autopr", "greet"}))
	assert.Equal(t, 2, realMain([]string{"autopr", "config", "read"}))
}
