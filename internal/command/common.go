// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
	"github.com/codeflow-engine/autopr-desktop/internal/output"
	"github.com/codeflow-engine/autopr-desktop/internal/status"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewRegistry builds the command registry for cmd. Collaborators injected
// through meta win; otherwise the status client follows --url.
func NewRegistry(cmd *cli.Command) *dispatch.Registry {
	deps := GetMeta(cmd).Deps
	if deps.Status == nil {
		deps.Status = status.NewClient(cmd.String("url"))
	}
	return dispatch.Default(deps)
}

// OutputOptions collects the output flags of cmd. Padding comes from the
// output.padding config key.
func OutputOptions(cmd *cli.Command) output.Options {
	padding, _ := config.GetInt("output.padding", 2)
	return output.Options{
		Format:  cmd.String("output"),
		Titles:  cmd.Bool("titles"),
		Color:   cmd.Bool("color"),
		Padding: padding,
		Filter:  cmd.String("filter"),
	}
}

// Emit writes a successful result with the command's output options, or
// returns the failure as an error. newline terminates bare raw strings, which
// suits one-line values such as greetings.
func Emit(cmd *cli.Command, res dispatch.Result, newline bool) error {
	if !res.OK {
		return res.Err()
	}

	opts := OutputOptions(cmd)
	value := res.Value
	if s, ok := value.(string); ok && newline && (opts.Format == "" || opts.Format == "raw") && !strings.HasSuffix(s, "\n") {
		value = s + "\n"
	}

	return output.Emit(stdout(cmd), value, opts)
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// readInput returns the contents of path, or of stdin when path is "-" or
// empty.
func readInput(cmd *cli.Command, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin(cmd))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}
