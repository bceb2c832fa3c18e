// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/differ"
	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
	"github.com/codeflow-engine/autopr-desktop/internal/output"
)

func configReadAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)
	return Emit(cmd, NewRegistry(cmd).Call(ctx, dispatch.ReadConfig, ""), false)
}

func configWriteAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	text, err := readInput(cmd, cmd.Args().First())
	if err != nil {
		return err
	}

	reg := NewRegistry(cmd)

	if cmd.Bool("diff") {
		if err := printDiff(cmd, currentDocument(ctx, reg), text); err != nil {
			return err
		}
	}

	return reg.Call(ctx, dispatch.WriteConfig, text).Err()
}

func configGetAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	key := cmd.Args().First()
	if key == "" {
		return errors.New("a key is required")
	}

	// Keys are looked up exactly as given.
	config.Config.Namespace = ""
	if _, err := config.Load(); err != nil {
		return err
	}

	value, err := config.Get(key)
	if err != nil {
		return fmt.Errorf("key %q not found", key)
	}

	opts := OutputOptions(cmd)
	if opts.Format == "raw" {
		_, err = fmt.Fprintln(stdout(cmd), output.InterfaceToString(value))
		return err
	}
	return output.Emit(stdout(cmd), value, opts)
}

func configPathAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	info, err := config.Stat()
	if err != nil {
		return err
	}

	opts := OutputOptions(cmd)
	if opts.Format == "raw" {
		_, err = fmt.Fprintln(stdout(cmd), info.Path)
		return err
	}

	doc := map[string]interface{}{
		"path":   info.Path,
		"exists": info.Exists,
	}
	if info.Exists {
		doc["size"] = humanize.Bytes(uint64(info.Size))
		doc["modified"] = humanize.Time(info.ModTime)
	}

	return output.Emit(stdout(cmd), doc, opts)
}

func configDiffAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	text, err := readInput(cmd, cmd.Args().First())
	if err != nil {
		return err
	}

	return printDiff(cmd, currentDocument(ctx, NewRegistry(cmd)), text)
}

// currentDocument returns the stored document, or "" when it cannot be read
// (usually because it does not exist yet).
func currentDocument(ctx context.Context, reg *dispatch.Registry) string {
	res := reg.Call(ctx, dispatch.ReadConfig, "")
	if !res.OK {
		log.Debugf("no current config: err=%s", res.Error)
		return ""
	}
	s, _ := res.Value.(string)
	return s
}

func printDiff(cmd *cli.Command, current, proposed string) error {
	out, changed, err := differ.Diff(current, proposed, cmd.Bool("color"))
	if err != nil {
		return err
	}

	w := stdout(cmd)
	if !changed {
		_, err = fmt.Fprintln(w, differ.Identical)
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func configCommandBuilder(meta meta.Meta) *cli.Command {
	md := map[string]any{
		"meta": meta,
	}

	return &cli.Command{
		Name:      "config",
		Usage:     "read and write the configuration document",
		UsageText: "autopr config <read|write|get|path|diff> [options]",
		Metadata:  md,
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "print the configuration document",
				UsageText: "autopr config read [options]",
				Metadata:  md,
				Flags:     NewGlobalFlags(),
				Action:    configReadAction,
			},
			{
				Name:      "write",
				Usage:     "replace the configuration document from FILE or stdin",
				UsageText: "autopr config write [FILE|-] [options]",
				Metadata:  md,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "enable colored diff output",
					},
					&cli.BoolFlag{
						Name:    "diff",
						Aliases: []string{"d"},
						Usage:   "show the changes before writing",
					},
				},
				Action: configWriteAction,
			},
			{
				Name:      "get",
				Usage:     "print the value at a dotted key",
				UsageText: "autopr config get KEY [options]",
				Metadata:  md,
				Flags:     NewGlobalFlags(),
				Action:    configGetAction,
			},
			{
				Name:      "path",
				Usage:     "show where the configuration document lives",
				UsageText: "autopr config path [options]",
				Metadata:  md,
				Flags:     NewGlobalFlags(),
				Action:    configPathAction,
			},
			{
				Name:      "diff",
				Usage:     "compare FILE or stdin against the configuration document",
				UsageText: "autopr config diff [FILE|-] [options]",
				Metadata:  md,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "enable colored diff output",
					},
				},
				Action: configDiffAction,
			},
		},
	}
}
