// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package host exposes the command registry over local HTTP so a front-end
// can invoke commands the way a desktop webview would. Command failures are
// data and come back as 200 responses carrying an error string; only
// transport-level problems (unknown route, bad method, unreadable body) use
// HTTP error codes.
package host
