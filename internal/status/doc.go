// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package status fetches the engine status document from the local AutoPR
// sidecar. A fetch is a single GET with no retry; the caller's context is the
// only deadline.
package status
