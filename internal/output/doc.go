// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders command results as raw text, key/value tables, JSON
// or YAML. Raw output is always the value exactly as produced.
package output
