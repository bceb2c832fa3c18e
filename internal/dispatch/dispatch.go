// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/codeflow-engine/autopr-desktop/internal/log"
)

// ErrUnknownCommand is returned by Lookup for names that were never
// registered.
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs a command. arg carries the command's single parameter, or ""
// for commands that take none.
type Handler func(ctx context.Context, arg string) (any, error)

// Command is a named operation exposed to the host runtime.
type Command struct {
	Name    string
	Param   string // JSON key of the single string argument; empty if none
	Usage   string
	Handler Handler
}

// Result is the outcome of one invocation. Exactly one of Value or Error is
// meaningful, as indicated by OK.
type Result struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Value   any    `json:"value"`
	Error   string `json:"error,omitempty"`
}

// Err returns the failure as an error, or nil when the invocation succeeded.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return errors.New(r.Error)
}

// Registry maps command names to commands. It is safe for concurrent use;
// registration normally happens once before any invocation.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: map[string]Command{}}
}

// Register adds cmd. Names must be unique and non-empty.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return errors.New("command name is required")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.commands[cmd.Name]; dup {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)

	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Invoke runs the named command with a JSON object of arguments. Unknown
// names, malformed arguments, handler errors and handler panics all come back
// as a failed Result.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (res Result) {
	res.Command = name
	log.Debugf("invoke: command=%s args=%d bytes", name, len(args))

	cmd, err := r.Lookup(name)
	if err != nil {
		return fail(res, err)
	}

	arg, err := decodeArg(cmd, args)
	if err != nil {
		return fail(res, err)
	}

	return run(ctx, cmd, arg, res)
}

// Call is a convenience for Go callers that already hold the argument value.
// The value reaches the handler byte for byte; it never passes through JSON.
func (r *Registry) Call(ctx context.Context, name string, arg string) Result {
	res := Result{Command: name}
	log.Debugf("call: command=%s arg=%d bytes", name, len(arg))

	cmd, err := r.Lookup(name)
	if err != nil {
		return fail(res, err)
	}
	if cmd.Param == "" {
		arg = ""
	}

	return run(ctx, cmd, arg, res)
}

// run executes the handler, turning errors and panics into a failed Result.
func run(ctx context.Context, cmd Command, arg string, res Result) (out Result) {
	defer func() {
		if p := recover(); p != nil {
			out = fail(res, fmt.Errorf("panic: %v", p))
		}
	}()

	value, err := cmd.Handler(ctx, arg)
	if err != nil {
		return fail(res, err)
	}

	res.OK = true
	res.Value = value
	return res
}

// decodeArg extracts the command's single string parameter from a JSON
// object. Unknown keys are ignored. Commands without a parameter accept any
// object, null or nothing at all.
func decodeArg(cmd Command, args json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(args)
	fields := map[string]json.RawMessage{}
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", cmd.Name, err)
		}
	}

	if cmd.Param == "" {
		return "", nil
	}

	raw, ok := fields[cmd.Param]
	if !ok {
		return "", fmt.Errorf("invalid arguments for %s: missing key %s", cmd.Name, cmd.Param)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %s must be a string", cmd.Name, cmd.Param)
	}

	return s, nil
}

func fail(res Result, err error) Result {
	log.Debugf("invoke failed: command=%s err=%v", res.Command, err)
	res.OK = false
	res.Value = nil
	res.Error = err.Error()
	return res
}
