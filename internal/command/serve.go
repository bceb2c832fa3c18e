// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/host"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
)

func serveCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return host.New(NewRegistry(cmd), cmd.String("listen")).ListenAndServe(ctx)
}

func serveCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve the command bridge over local HTTP",
		UsageText: "autopr serve [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewListenFlag(meta.ConfigPath),
			NewURLFlag(meta.ConfigPath),
		},
		Action: serveCommandAction,
	}
}
