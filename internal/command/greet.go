// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
)

func greetCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	if cmd.Args().Len() == 0 {
		return errors.New("a name is required")
	}
	name := strings.Join(cmd.Args().Slice(), " ")

	return Emit(cmd, NewRegistry(cmd).Call(ctx, dispatch.Greet, name), true)
}

func greetCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "greet",
		Usage:     "greet someone",
		UsageText: "autopr greet NAME [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  NewGlobalFlags(),
		Action: greetCommandAction,
	}
}
