// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package logstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codeflow-engine/autopr-desktop/internal/log"
)

// DefaultURL is the sidecar's log websocket.
const DefaultURL = "ws://localhost:8000/ws/logs"

const handshakeTimeout = 10 * time.Second

// ErrStop may be returned by the callback to end the stream early without
// reporting a failure.
var ErrStop = errors.New("stop")

// Filter keeps records containing Query, ignoring case. An empty Query keeps
// everything.
type Filter struct {
	Query string
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(f.Query))
}

// Stream dials url and calls fn for every record that passes filter, in
// arrival order. It returns nil when the sidecar closes the socket normally
// or ctx is done, and an error for a failed dial or an abrupt disconnect.
func Stream(ctx context.Context, url string, filter Filter, fn func(line string) error) error {
	if url == "" {
		url = DefaultURL
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	log.Debugf("log stream connected: url=%s", url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Unblocks ReadMessage below.
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	records := 0
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			log.Debugf("log stream ended: url=%s records=%d err=%v", url, records, err)
			switch {
			case ctx.Err() != nil:
				return nil
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				return nil
			}
			return fmt.Errorf("log stream interrupted: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		records++

		line := strings.TrimRight(string(data), "\r\n")
		if !filter.Match(line) {
			continue
		}
		if err := fn(line); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}
