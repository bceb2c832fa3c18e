// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
)

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// the context, the collaborators handed to the command registry, the resolved
// configuration document path and the starting working directory.
type Meta struct {
	Args        []string
	Context     context.Context
	Deps        dispatch.Deps
	ConfigPath  string
	StartingDir string
}
