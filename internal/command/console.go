// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
	"github.com/codeflow-engine/autopr-desktop/internal/output"
)

const (
	consoleHistoryName = ".autopr_console_history"
	maxConsoleHistory  = 1000
)

func consoleCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	p := tea.NewProgram(initialConsoleModel(ctx, NewRegistry(cmd)), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// consoleResultMsg carries the rendered outcome of one entry.
type consoleResultMsg string

// consoleModel is the Bubble Tea model for the console command.
type consoleModel struct {
	ctx            context.Context
	registry       *dispatch.Registry
	input          textinput.Model
	history        []string // Full history for navigation (includes file history)
	sessionHistory []string // Only entries from this session (matches with outputs)
	histIndex      int
	output         []string
	busy           bool
}

func initialConsoleModel(ctx context.Context, registry *dispatch.Registry) consoleModel {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.Focus()
	ti.CharLimit = 8192
	ti.Width = 999
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorBlink)

	banner := []string{
		fmt.Sprintf("AutoPR console. %d commands registered.", len(registry.Commands())),
		"Type 'help' for commands, 'exit' or Ctrl+C to quit.",
	}

	return consoleModel{
		ctx:            ctx,
		registry:       registry,
		input:          ti,
		history:        loadConsoleHistory(consoleHistoryFile()),
		sessionHistory: []string{},
		histIndex:      -1,
		output:         banner,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case consoleResultMsg:
		m.output = append(m.output, string(msg))
		m.busy = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			raw := m.input.Value()
			entry := strings.TrimSpace(raw)
			if entry == "" || m.busy {
				return m, nil
			}
			if entry == "exit" || entry == "quit" {
				return m, tea.Quit
			}

			m.history = append(m.history, entry)
			m.sessionHistory = append(m.sessionHistory, entry)
			m.histIndex = -1
			saveConsoleHistory(consoleHistoryFile(), m.history)
			m.input.SetValue("")

			if entry == "help" {
				m.output = append(m.output, consoleHelp(m.registry))
				return m, nil
			}

			m.busy = true
			ctx, reg := m.ctx, m.registry
			return m, func() tea.Msg {
				return consoleResultMsg(processConsoleLine(ctx, reg, raw))
			}

		case "up":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex == -1 {
				m.histIndex = len(m.history) - 1
			} else if m.histIndex > 0 {
				m.histIndex--
			}
			m.input.SetValue(m.history[m.histIndex])
			m.input.CursorEnd()
			return m, nil

		case "down":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex >= 0 && m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.input.SetValue(m.history[m.histIndex])
				m.input.CursorEnd()
			} else {
				m.histIndex = -1
				m.input.SetValue("")
			}
			return m, nil

		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m consoleModel) View() string {
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#2f81f7"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))

	lines := append([]string{}, m.output[:2]...)

	// Each entry of this session followed by its output (offset by the two
	// banner lines).
	for i, entry := range m.sessionHistory {
		lines = append(lines, promptStyle.Render("> ")+entry)
		if i+2 < len(m.output) {
			out := m.output[i+2]
			if strings.HasPrefix(out, "error: ") {
				out = errStyle.Render(out)
			}
			lines = append(lines, out)
		}
	}

	if m.busy {
		lines = append(lines, "...")
	} else {
		lines = append(lines, promptStyle.Render("> ")+m.input.View())
	}

	return strings.Join(lines, "\n")
}

// processConsoleLine runs one console entry. The first word names the
// command; the rest is either a JSON argument object or the raw value of the
// command's single parameter. Only the whitespace separating the two is
// dropped, so a raw value keeps its trailing spaces.
func processConsoleLine(ctx context.Context, reg *dispatch.Registry, line string) string {
	line = strings.TrimLeft(line, " \t")
	name, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, rest = line[:i], strings.TrimLeft(line[i:], " \t")
	}

	var res dispatch.Result
	if isJSONObject(rest) {
		res = reg.Invoke(ctx, name, []byte(rest))
	} else {
		res = reg.Call(ctx, name, rest)
	}

	if !res.OK {
		return "error: " + res.Error
	}
	return strings.TrimSuffix(output.InterfaceToString(res.Value, "ok"), "\n")
}

// isJSONObject reports whether s is a well-formed JSON object. Anything else,
// including YAML flow mappings such as "{a: 1}", is a raw value.
func isJSONObject(s string) bool {
	if !strings.HasPrefix(strings.TrimSpace(s), "{") || !json.Valid([]byte(s)) {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &obj) == nil
}

func consoleHelp(reg *dispatch.Registry) string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range reg.Commands() {
		usage := c.Name
		if c.Param != "" {
			usage += " <" + c.Param + ">"
		}
		fmt.Fprintf(&b, "  %-24s %s\n", usage, c.Usage)
	}
	b.WriteString(`
Arguments may also be given as a JSON object:
  greet {"name":"Ada"}

Navigation:
  ↑/↓ arrows                 navigate history
  exit, Ctrl+C               quit`)
	return b.String()
}

// consoleHistoryFile returns the path to the console history file.
func consoleHistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return consoleHistoryName
	}
	return filepath.Join(homeDir, consoleHistoryName)
}

func loadConsoleHistory(filename string) []string {
	var history []string

	file, err := os.Open(filename)
	if err != nil {
		return history
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			history = append(history, line)
		}
	}

	return history
}

func saveConsoleHistory(filename string, history []string) {
	start := 0
	if len(history) > maxConsoleHistory {
		start = len(history) - maxConsoleHistory
	}

	// Entries may carry configuration text, so the file is private.
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:mnd
	if err != nil {
		log.Debugf("failed to save console history: err=%v", err)
		return
	}
	defer file.Close()
	if err := file.Chmod(0o600); err != nil { //nolint:mnd
		log.Debugf("failed to restrict console history: err=%v", err)
	}

	writer := bufio.NewWriter(file)
	for i := start; i < len(history); i++ {
		fmt.Fprintln(writer, history[i])
	}
	writer.Flush()
}

func consoleCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "console",
		Usage:     "interactive command console",
		UsageText: "autopr console [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewURLFlag(meta.ConfigPath),
		},
		Action: consoleCommandAction,
	}
}
