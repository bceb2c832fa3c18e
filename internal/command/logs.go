// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/logstream"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
)

var levelStyles = map[string]lipgloss.Style{
	"ERROR":    lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149")),
	"CRITICAL": lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149")).Bold(true),
	"WARNING":  lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922")),
	"DEBUG":    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
}

func logsCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	limit := cmd.Int("lines")
	if limit < 0 {
		return fmt.Errorf("lines must not be negative, got %d", limit)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := stdout(cmd)
	color := cmd.Bool("color")
	printed := 0

	return logstream.Stream(ctx, cmd.String("url"), logstream.Filter{Query: cmd.String("grep")}, func(line string) error {
		if color {
			line = colorizeLogLine(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		printed++
		if limit > 0 && printed >= limit {
			return logstream.ErrStop
		}
		return nil
	})
}

// colorizeLogLine tints a "time - name - LEVEL - message" record by level.
// Lines in any other shape are returned unchanged.
func colorizeLogLine(line string) string {
	parts := strings.SplitN(line, " - ", 4) //nolint:mnd
	if len(parts) < 4 { //nolint:mnd
		return line
	}
	style, ok := levelStyles[parts[2]]
	if !ok {
		return line
	}
	return style.Render(line)
}

func logsCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "logs",
		Usage:     "follow the sidecar log stream",
		UsageText: "autopr logs [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewLogsURLFlag(meta.ConfigPath),
			&cli.BoolFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "color records by level",
				Value:   false,
			},
			&cli.StringFlag{
				Name:    "grep",
				Aliases: []string{"g"},
				Usage:   "only show records containing this text (case-insensitive)",
			},
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Usage:   "exit after this many records (0 follows until interrupted)",
				Value:   0,
			},
		},
		Action: logsCommandAction,
	}
}
