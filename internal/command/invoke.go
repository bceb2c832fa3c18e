// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
)

// invokeCommandAction runs a registry command with a JSON argument object and
// prints the full result envelope, mirroring what the HTTP bridge returns.
func invokeCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	name := cmd.Args().Get(0)
	if name == "" {
		return errors.New("a command name is required")
	}

	var args json.RawMessage
	switch a := cmd.Args().Get(1); a {
	case "":
	case "-":
		text, err := readInput(cmd, a)
		if err != nil {
			return err
		}
		args = json.RawMessage(text)
	default:
		args = json.RawMessage(a)
	}

	res := NewRegistry(cmd).Invoke(ctx, name, args)

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(stdout(cmd), string(b))

	return res.Err()
}

func invokeCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "invoke",
		Usage:     "invoke a command by name with JSON arguments",
		UsageText: `autopr invoke COMMAND ['{"key":"value"}'|-] [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewURLFlag(meta.ConfigPath),
		},
		Action: invokeCommandAction,
	}
}
