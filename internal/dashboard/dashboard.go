// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package dashboard polls the sidecar status endpoint on an interval, either
// as an interactive terminal view or as a plain loop for non-terminals.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/output"
	"github.com/codeflow-engine/autopr-desktop/internal/status"
)

// DefaultInterval matches the desktop dashboard's refresh period.
const DefaultInterval = 5 * time.Second

// Reader returns one observation of the status endpoint.
type Reader interface {
	Read(ctx context.Context) (status.Reading, error)
}

type readingMsg struct {
	reading status.Reading
	err     error
	manual  bool
}

type tickMsg time.Time

// Model is the bubbletea model for the status dashboard.
type Model struct {
	ctx      context.Context
	reader   Reader
	url      string
	interval time.Duration

	reading  status.Reading
	err      error
	fetching bool
	polls    int
	now      func() time.Time
}

// New builds a dashboard model. A non-positive interval means DefaultInterval.
func New(reader Reader, url string, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		ctx:      context.Background(),
		reader:   reader,
		url:      url,
		interval: interval,
		fetching: true,
		now:      time.Now,
	}
}

// Run starts the interactive dashboard and blocks until the user quits or ctx
// is cancelled. Fetches in flight are bound to ctx as well.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m.WithContext(ctx), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// WithContext returns a copy of m whose fetches use ctx.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

func (m Model) Init() tea.Cmd {
	return m.fetch(false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.fetching {
				return m, nil
			}
			m.fetching = true
			return m, m.fetch(true)
		}

	case tickMsg:
		// A manual refresh is still in flight; try again next period.
		if m.fetching {
			return m, m.tick()
		}
		m.fetching = true
		return m, m.fetch(false)

	case readingMsg:
		m.fetching = false
		m.polls++
		m.err = msg.err
		if msg.err == nil {
			m.reading = msg.reading
		}
		if msg.manual {
			return m, nil
		}
		return m, m.tick()
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#30A46C"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AutoPR engine status"))
	b.WriteString("  " + dimStyle.Render(m.url) + "\n\n")

	switch {
	case m.polls == 0:
		b.WriteString("Fetching status...\n")
	case m.err != nil:
		b.WriteString(errStyle.Render("Failed to fetch status: "+m.err.Error()) + "\n")
		if !m.reading.FetchedAt.IsZero() {
			b.WriteString(dimStyle.Render("last good reading "+humanize.RelTime(m.reading.FetchedAt, m.now(), "ago", "from now")) + "\n")
		}
	default:
		code := fmt.Sprintf("HTTP %d", m.reading.StatusCode)
		if m.reading.StatusCode >= 200 && m.reading.StatusCode < 300 {
			code = okStyle.Render(code)
		} else {
			code = errStyle.Render(code)
		}
		b.WriteString(code + "  " + dimStyle.Render("updated "+humanize.RelTime(m.reading.FetchedAt, m.now(), "ago", "from now")) + "\n\n")
		b.WriteString(renderBody(m.reading.Body) + "\n")
	}

	state := fmt.Sprintf("every %s", m.interval)
	if m.fetching {
		state = "refreshing..."
	}
	b.WriteString("\n" + dimStyle.Render(state+"  r: refresh  q: quit") + "\n")

	return b.String()
}

func (m Model) fetch(manual bool) tea.Cmd {
	ctx, reader := m.ctx, m.reader
	return func() tea.Msg {
		r, err := reader.Read(ctx)
		return readingMsg{reading: r, err: err, manual: manual}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// renderBody lays out a JSON or YAML object as aligned key/value lines and
// leaves anything else as is.
func renderBody(body string) string {
	rows, ok := output.Rows(body)
	if !ok {
		return strings.TrimRight(body, "\n")
	}

	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, r[0], r[1]))
	}
	return strings.Join(lines, "\n")
}

// Poll reads the status every interval until ctx is done, handing each
// outcome to fn. The first read happens immediately.
func Poll(ctx context.Context, reader Reader, interval time.Duration, fn func(status.Reading, error)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r, err := reader.Read(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Debugf("poll failed: err=%v", err)
		}
		fn(r, err)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
