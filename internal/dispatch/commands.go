// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/status"
)

// Command names as seen by the host runtime.
const (
	Greet       = "greet"
	GetStatus   = "get_status"
	ReadConfig  = "read_config"
	WriteConfig = "write_config"
)

// StatusFetcher returns the sidecar status document.
type StatusFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// ConfigStore reads and replaces the configuration document as raw text.
type ConfigStore interface {
	Read() (string, error)
	Write(text string) error
}

// Deps are the collaborators of the default command set. Nil fields fall back
// to the real sidecar endpoint and the $HOME document.
type Deps struct {
	Status StatusFetcher
	Config ConfigStore
}

// FileStore is the ConfigStore backed by $HOME/.autopr.yaml.
type FileStore struct{}

func (FileStore) Read() (string, error)   { return config.Read() }
func (FileStore) Write(text string) error { return config.Write(text) }

// Greeting formats the greet reply.
func Greeting(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// Default returns a registry holding greet, get_status, read_config and
// write_config.
func Default(deps Deps) *Registry {
	if deps.Status == nil {
		deps.Status = status.NewClient("")
	}
	if deps.Config == nil {
		deps.Config = FileStore{}
	}

	r := NewRegistry()
	for _, cmd := range []Command{
		{
			Name:  Greet,
			Param: "name",
			Usage: "return a greeting for name",
			Handler: func(_ context.Context, name string) (any, error) {
				return Greeting(name), nil
			},
		},
		{
			Name:  GetStatus,
			Usage: "fetch the sidecar status document",
			Handler: func(ctx context.Context, _ string) (any, error) {
				return deps.Status.Fetch(ctx)
			},
		},
		{
			Name:  ReadConfig,
			Usage: "read the configuration document",
			Handler: func(_ context.Context, _ string) (any, error) {
				return deps.Config.Read()
			},
		},
		{
			Name:  WriteConfig,
			Param: "config",
			Usage: "replace the configuration document",
			Handler: func(_ context.Context, text string) (any, error) {
				return nil, deps.Config.Write(text)
			},
		},
	} {
		// Names are fixed above; a failure here is a programming error.
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}

	return r
}
