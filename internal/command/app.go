// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
)

// InitApp resolves the runtime metadata for args and builds the root command.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	// The arg[1] immediately following the binary (arg[0]) is the autopr
	// subcommand and also the namespace used when retrieving config values.
	// arg[1] could be -h/--help, so ignore it if it appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}
	config.Config.Namespace = ns

	// A missing HOME is not fatal here. Commands that need the document report
	// it themselves, and flags simply lose their config file source.
	cfgPath, err := config.Path()
	if err != nil {
		log.Debugf("config path unavailable: err=%v", err)
	}

	return NewApp(meta.Meta{
		Args:        args,
		Context:     ctx,
		ConfigPath:  cfgPath,
		StartingDir: sd,
	}), nil
}

// NewApp builds the root command around m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:  "autopr",
		Usage: "AutoPR desktop backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "autopr version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		greetCommandBuilder(m),
		statusCommandBuilder(m),
		configCommandBuilder(m),
		invokeCommandBuilder(m),
		serveCommandBuilder(m),
		consoleCommandBuilder(m),
		logsCommandBuilder(m),
		completionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app
}
