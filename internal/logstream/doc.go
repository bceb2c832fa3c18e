// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package logstream follows the sidecar's log websocket. Each text frame is
// one formatted log record; the stream ends when the sidecar closes the
// socket or the caller's context is done.
package logstream
