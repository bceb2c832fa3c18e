// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codeflow-engine/autopr-desktop/internal/command"
	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain(os.Args))
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs expands @set references and drops repeated flags.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		return args
	}

	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)

	return deduplicateFlags(args)
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain(args []string) int {
	log.InitLogger()
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly replaces an @set argument with the entries stored under
// <command>.<set> in the config document. For example, with
//
//	status:
//	  dash: ["--watch", "--interval 2s"]
//
// "autopr status @dash" runs "autopr status --watch --interval 2s".
func processSetOnly(args []string) []string {
	if len(args) < 3 {
		return args
	}

	removeIdx := -1
	set := ""
	for i, a := range args[2:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			removeIdx = i + 2
			break
		}
	}
	if removeIdx == -1 {
		return args
	}

	// An @word without a matching set is an ordinary argument, e.g. a handle.
	entries, err := config.GetStringSlice(args[1] + "." + set)
	if err != nil {
		log.Debugf("no set %s for %s: err=%v", set, args[1], err)
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)-1+len(expanded))
	out = append(out, args[:removeIdx]...)
	out = append(out, expanded...)
	out = append(out, args[removeIdx+1:]...)

	return out
}

// deduplicateFlags keeps only the last occurrence of each flag so that a set
// expansion can be overridden on the command line. A flag written as
// "--name value" carries its value with it.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type group struct {
		key   string
		items []string
	}

	var groups []group
	for i := 2; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			groups = append(groups, group{items: []string{a}})
			continue
		}

		key, _, hasValue := strings.Cut(a, "=")
		g := group{key: key, items: []string{a}}
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			g.items = append(g.items, args[i+1])
			i++
		}
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.key != "" {
			last[g.key] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, g := range groups {
		if g.key != "" && last[g.key] != i {
			continue
		}
		out = append(out, g.items...)
	}

	return out
}
