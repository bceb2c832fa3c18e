// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package dispatch registers the commands a host runtime may invoke and
// routes invocations to them. Every failure is flattened to a string on the
// way out; an invocation never panics and never returns a Go error.
package dispatch
