// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/codeflow-engine/autopr-desktop/internal/dashboard"
	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/log"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
	"github.com/codeflow-engine/autopr-desktop/internal/status"
)

func statusCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	if !cmd.Bool("watch") {
		return Emit(cmd, NewRegistry(cmd).Call(ctx, dispatch.GetStatus, ""), false)
	}

	interval := cmd.Duration("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	url := cmd.String("url")
	reader := statusReader(cmd, url)
	w := stdout(cmd)

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return dashboard.Run(ctx, dashboard.New(reader, url, interval))
	}

	return dashboard.Poll(ctx, reader, interval, func(r status.Reading, err error) {
		printReading(w, r, err)
	})
}

// statusReader picks the reader for watch mode. An injected fetcher is
// adapted when it cannot report status codes itself.
func statusReader(cmd *cli.Command, url string) dashboard.Reader {
	fetcher := GetMeta(cmd).Deps.Status
	switch f := fetcher.(type) {
	case nil:
		return status.NewClient(url)
	case dashboard.Reader:
		return f
	default:
		return fetcherReader{fetcher}
	}
}

type fetcherReader struct {
	fetcher dispatch.StatusFetcher
}

func (r fetcherReader) Read(ctx context.Context) (status.Reading, error) {
	body, err := r.fetcher.Fetch(ctx)
	return status.Reading{Body: body, FetchedAt: time.Now()}, err
}

// printReading writes one poll result as a single line.
func printReading(w io.Writer, r status.Reading, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s error: %v\n", time.Now().Format(time.RFC3339), err)
		return
	}

	body := strings.Join(strings.Fields(r.Body), " ")
	if r.StatusCode != 0 {
		fmt.Fprintf(w, "%s %d %s\n", r.FetchedAt.Format(time.RFC3339), r.StatusCode, body)
		return
	}
	fmt.Fprintf(w, "%s %s\n", r.FetchedAt.Format(time.RFC3339), body)
}

func statusCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "fetch the sidecar status",
		UsageText: "autopr status [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewURLFlag(meta.ConfigPath),
			NewIntervalFlag(meta.ConfigPath),
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "poll the status until interrupted",
				Value:   false,
			},
		}, NewGlobalFlags()...),
		Action: statusCommandAction,
	}
}
