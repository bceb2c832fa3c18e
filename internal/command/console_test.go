// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
)

type memStore struct{ text string }

func (m *memStore) Read() (string, error) {
	if m.text == "" {
		return "", errors.New("no config")
	}
	return m.text, nil
}

func (m *memStore) Write(text string) error {
	m.text = text
	return nil
}

func testRegistry() *dispatch.Registry {
	return dispatch.Default(dispatch.Deps{Status: stubStatus{body: "up"}, Config: &memStore{}})
}

func TestProcessConsoleLine(t *testing.T) {
	reg := testRegistry()
	ctx := context.Background()

	tests := []struct {
		line string
		want string
	}{
		{"greet Ada", dispatch.Greeting("Ada")},
		{"  greet   Ada Lovelace", dispatch.Greeting("Ada Lovelace")},
		{"greet\tAda", dispatch.Greeting("Ada")},
		{`greet {"name":"Bo"}`, dispatch.Greeting("Bo")},
		{`greet {"x":1}`, "error: invalid arguments for greet: missing key name"},
		{"get_status", "up"},
		{"read_config", "error: no config"},
		{"write_config a: 1", "ok"},
		{"read_config", "a: 1"},
		{"write_config {a: 1}", "ok"},
		{"read_config", "{a: 1}"},
		{`write_config ["x"]`, "ok"},
		{"read_config", `["x"]`},
		{"write_config {not json", "ok"},
		{"read_config", "{not json"},
		{"nope", "error: unknown command: nope"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, processConsoleLine(ctx, reg, tt.line), tt.line)
	}
}

func TestConsoleModel(t *testing.T) {
	home := setupHome(t, "")
	historyFile := filepath.Join(filepath.Dir(home), consoleHistoryName)

	m := initialConsoleModel(context.Background(), testRegistry())
	require.Len(t, m.output, 2)
	assert.Contains(t, m.output[0], "4 commands")

	m.input.SetValue("greet Ada")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(consoleModel)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, []string{"greet Ada"}, m.sessionHistory)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "...")

	next, _ = m.Update(cmd())
	m = next.(consoleModel)
	assert.False(t, m.busy)
	require.Len(t, m.output, 3)
	assert.Equal(t, dispatch.Greeting("Ada"), m.output[2])
	assert.Contains(t, m.View(), "Hello, Ada!")

	assert.Equal(t, []string{"greet Ada"}, loadConsoleHistory(historyFile))

	t.Run("help", func(t *testing.T) {
		m.input.SetValue("help")
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		hm := next.(consoleModel)
		assert.Nil(t, cmd)
		assert.Contains(t, hm.output[len(hm.output)-1], "write_config <config>")
	})

	t.Run("history navigation", func(t *testing.T) {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
		hm := next.(consoleModel)
		assert.Equal(t, "greet Ada", hm.input.Value())

		next, _ = hm.Update(tea.KeyMsg{Type: tea.KeyDown})
		hm = next.(consoleModel)
		assert.Empty(t, hm.input.Value())
		assert.Equal(t, -1, hm.histIndex)
	})

	t.Run("exit", func(t *testing.T) {
		m.input.SetValue("exit")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("blank entry ignored", func(t *testing.T) {
		m.input.SetValue("   ")
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Len(t, next.(consoleModel).sessionHistory, 1)
	})
}

func TestConsoleHistory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "history")

	assert.Empty(t, loadConsoleHistory(file))

	var history []string
	for i := 0; i < maxConsoleHistory+5; i++ {
		history = append(history, fmt.Sprintf("greet %d", i))
	}
	saveConsoleHistory(file, history)

	loaded := loadConsoleHistory(file)
	require.Len(t, loaded, maxConsoleHistory)
	assert.Equal(t, "greet 5", loaded[0])
	assert.Equal(t, fmt.Sprintf("greet %d", maxConsoleHistory+4), loaded[len(loaded)-1])

	fi, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestConsoleHistory_TightensExistingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(file, []byte("greet old\n"), 0o644))

	saveConsoleHistory(file, []string{"write_config token: s3cret"})

	fi, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	assert.Equal(t, []string{"write_config token: s3cret"}, loadConsoleHistory(file))
}

func TestProcessConsoleLine_KeepsValueVerbatim(t *testing.T) {
	store := &memStore{}
	reg := dispatch.Default(dispatch.Deps{Status: stubStatus{body: "up"}, Config: store})

	assert.Equal(t, "ok", processConsoleLine(context.Background(), reg, "write_config   key: value  "))
	assert.Equal(t, "key: value  ", store.text)
}

func TestIsJSONObject(t *testing.T) {
	assert.True(t, isJSONObject(`{"config":"a: 1"}`))
	assert.True(t, isJSONObject(` {} `))
	assert.False(t, isJSONObject(`{a: 1}`))
	assert.False(t, isJSONObject(`["x"]`))
	assert.False(t, isJSONObject(`"x"`))
	assert.False(t, isJSONObject(``))
}
