// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for autopr. It wires flags,
// validators, actions, and shell completion for subcommands. Every action that
// touches the document or the sidecar goes through the dispatch registry so
// the CLI, the HTTP bridge and the console behave the same way.
package command
