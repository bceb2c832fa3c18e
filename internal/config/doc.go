// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config owns the AutoPR configuration document, a YAML file located
// at $HOME/.autopr.yaml. The document is read and written as opaque text by
// the read_config and write_config commands; Load and the typed getters parse
// it only for CLI-side lookups and never alter what is stored.
package config
