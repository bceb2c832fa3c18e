// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package logstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLogServer serves records over a websocket and then closes it with code.
// A code of 0 leaves the socket open until the client goes away.
func newLogServer(t *testing.T, records []string, code int) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, rec := range records {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(rec)); err != nil {
				return
			}
		}

		if code == 0 {
			// Drain until the client closes.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/logs"
}

var testRecords = []string{
	"2026-10-18 10:00:00,001 - autopr - INFO - engine started",
	"2026-10-18 10:00:01,002 - autopr.llm - WARNING - rate limited\n",
	"2026-10-18 10:00:02,003 - autopr - INFO - pull request opened",
}

func TestFilter_Match(t *testing.T) {
	assert.True(t, Filter{}.Match("anything"))
	assert.True(t, Filter{Query: "warning"}.Match("x - WARNING - y"))
	assert.True(t, Filter{Query: "Engine"}.Match("engine started"))
	assert.False(t, Filter{Query: "error"}.Match("x - INFO - y"))
}

func TestStream_DeliversRecordsInOrder(t *testing.T) {
	url := newLogServer(t, testRecords, websocket.CloseNormalClosure)

	var got []string
	err := Stream(context.Background(), url, Filter{}, func(line string) error {
		got = append(got, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		testRecords[0],
		strings.TrimSuffix(testRecords[1], "\n"),
		testRecords[2],
	}, got)
}

func TestStream_Filter(t *testing.T) {
	url := newLogServer(t, testRecords, websocket.CloseGoingAway)

	var got []string
	err := Stream(context.Background(), url, Filter{Query: "info"}, func(line string) error {
		got = append(got, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{testRecords[0], testRecords[2]}, got)
}

func TestStream_StopsOnErrStop(t *testing.T) {
	url := newLogServer(t, testRecords, 0)

	var got []string
	err := Stream(context.Background(), url, Filter{}, func(line string) error {
		got = append(got, line)
		return ErrStop
	})
	require.NoError(t, err)
	assert.Equal(t, []string{testRecords[0]}, got)
}

func TestStream_CallbackError(t *testing.T) {
	url := newLogServer(t, testRecords, 0)

	boom := errors.New("broken pipe")
	err := Stream(context.Background(), url, Filter{}, func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestStream_ContextCancelEndsQuietly(t *testing.T) {
	url := newLogServer(t, testRecords, 0)

	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	errc := make(chan error, 1)
	go func() {
		errc <- Stream(ctx, url, Filter{}, func(string) error {
			seen++
			if seen == len(testRecords) {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
	assert.Equal(t, len(testRecords), seen)
}

func TestStream_AbnormalClose(t *testing.T) {
	url := newLogServer(t, testRecords[:1], websocket.CloseInternalServerErr)

	err := Stream(context.Background(), url, Filter{}, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log stream interrupted")
}

func TestStream_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	err = Stream(context.Background(), "ws://"+addr+"/ws/logs", Filter{}, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestStream_NotAWebsocket(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := Stream(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), Filter{}, func(string) error { return nil })
	assert.Error(t, err)
}
