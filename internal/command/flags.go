// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/dashboard"
	"github.com/codeflow-engine/autopr-desktop/internal/host"
	"github.com/codeflow-engine/autopr-desktop/internal/logstream"
	"github.com/codeflow-engine/autopr-desktop/internal/status"
)

// NewGlobalFlags returns the output flags shared by commands that print a
// result.
func NewGlobalFlags() (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated filters on top-level entries (e.g. key^llm)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (raw, text, json, yaml)",
			Value:   "raw",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AUTOPR_OUTPUT"),
			),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewURLFlag constructs the --url flag for the sidecar status endpoint. When
// path names the config document, status.url and url are consulted after the
// environment.
func NewURLFlag(path string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "sidecar status endpoint",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AUTOPR_STATUS_URL"),
		),
		Value: status.DefaultURL,
	}

	if path != "" {
		NameSpacedValueChainFromConfigFile("status", path, flag.Name, &flag.Sources)
	}

	return flag
}

// NewLogsURLFlag constructs the --url flag for the sidecar log websocket.
// Only logs.url is read from the config document; the bare url key belongs
// to the status endpoint.
func NewLogsURLFlag(path string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "sidecar log websocket",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AUTOPR_LOGS_URL"),
		),
		Value: logstream.DefaultURL,
	}

	if path != "" {
		NameSpacedValueFromConfigFile("logs", path, flag.Name, &flag.Sources)
	}

	return flag
}

// NewIntervalFlag constructs the --interval flag for status polling.
func NewIntervalFlag(path string) *cli.DurationFlag {
	flag := &cli.DurationFlag{
		Name:    "interval",
		Aliases: []string{"i"},
		Usage:   "polling interval for --watch",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AUTOPR_STATUS_INTERVAL"),
		),
		Value: dashboard.DefaultInterval,
	}

	if path != "" {
		NameSpacedValueChainFromConfigFile("status", path, flag.Name, &flag.Sources)
	}

	return flag
}

// NewListenFlag constructs the --listen flag for the HTTP bridge.
func NewListenFlag(path string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "listen",
		Aliases: []string{"l"},
		Usage:   "address for the command bridge",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("AUTOPR_LISTEN"),
		),
		Value: host.DefaultAddr,
	}

	if path != "" {
		NameSpacedValueChainFromConfigFile("serve", path, flag.Name, &flag.Sources)
	}

	return flag
}

// NameSpacedValueChainFromConfigFile appends namespaced and global config
// file sources for name to chain.
func NameSpacedValueChainFromConfigFile(ns string, path string, name string, chain *cli.ValueSourceChain) {
	chain.Chain = append(chain.Chain,
		yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)),
		yaml.YAML(name, altsrc.StringSourcer(path)),
	)
}

// NameSpacedValueFromConfigFile appends only the namespaced config file source
// for name to chain.
func NameSpacedValueFromConfigFile(ns string, path string, name string, chain *cli.ValueSourceChain) {
	chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)))
}
