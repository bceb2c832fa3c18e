// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeflow-engine/autopr-desktop/internal/config"
	"github.com/codeflow-engine/autopr-desktop/internal/dispatch"
	"github.com/codeflow-engine/autopr-desktop/internal/meta"
	"github.com/codeflow-engine/autopr-desktop/internal/status"
)

type stubStatus struct {
	body string
	err  error
}

func (s stubStatus) Fetch(context.Context) (string, error) { return s.body, s.err }

// setupHome points HOME at a temp directory and optionally installs doc as
// the configuration document. It returns the document path.
func setupHome(t *testing.T, doc string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, config.FileName)

	if doc != "" {
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	}

	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	return path
}

func runAppCtx(ctx context.Context, t *testing.T, m meta.Meta, stdin string, args ...string) (string, error) {
	t.Helper()

	app := NewApp(m)
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)

	err := app.Run(ctx, append([]string{"autopr"}, args...))
	return out.String(), err
}

func runApp(t *testing.T, m meta.Meta, stdin string, args ...string) (string, error) {
	t.Helper()
	return runAppCtx(context.Background(), t, m, stdin, args...)
}

func statusServer(t *testing.T, code int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInitApp(t *testing.T) {
	path := setupHome(t, "")

	app, err := InitApp(context.Background(), []string{"autopr", "status"})
	require.NoError(t, err)
	assert.Equal(t, "autopr", app.Name)
	assert.Equal(t, "status", config.Config.Namespace)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"greet", "status", "config", "invoke", "serve", "console", "logs", "completion"}, names)

	m := GetMeta(app.Commands[0])
	assert.Equal(t, path, m.ConfigPath)
	assert.NotEmpty(t, m.StartingDir)

	t.Run("flag arg is not a namespace", func(t *testing.T) {
		_, err := InitApp(context.Background(), []string{"autopr", "--help"})
		require.NoError(t, err)
		assert.Empty(t, config.Config.Namespace)
	})

	t.Run("missing HOME is not fatal", func(t *testing.T) {
		t.Setenv("HOME", "")
		app, err := InitApp(context.Background(), []string{"autopr", "greet"})
		require.NoError(t, err)
		assert.Empty(t, GetMeta(app.Commands[0]).ConfigPath)
	})
}

func TestGetMeta(t *testing.T) {
	assert.Equal(t, meta.Meta{}, GetMeta(nil))

	app := NewApp(meta.Meta{StartingDir: "/tmp"})
	assert.Equal(t, "/tmp", GetMeta(app.Commands[0]).StartingDir)
	assert.Equal(t, meta.Meta{}, GetMeta(app))
}

func TestGreet(t *testing.T) {
	setupHome(t, "")
	m := meta.Meta{Deps: dispatch.Deps{Status: stubStatus{}}}

	out, err := runApp(t, m, "", "greet", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada Lovelace! You've been greeted from Go!\n", out)

	out, err = runApp(t, m, "", "greet", "--output", "json", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "\"Hello, Ada! You've been greeted from Go!\"\n", out)

	_, err = runApp(t, m, "", "greet")
	assert.EqualError(t, err, "a name is required")

	_, err = runApp(t, m, "", "greet", "--output", "bogus", "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestStatus(t *testing.T) {
	setupHome(t, "")

	t.Run("body verbatim", func(t *testing.T) {
		m := meta.Meta{Deps: dispatch.Deps{Status: stubStatus{body: "{\"state\":\"idle\"}"}}}
		out, err := runApp(t, m, "", "status")
		require.NoError(t, err)
		assert.Equal(t, `{"state":"idle"}`, out)
	})

	t.Run("text output", func(t *testing.T) {
		m := meta.Meta{Deps: dispatch.Deps{Status: stubStatus{body: `{"state":"idle","queue":3}`}}}
		out, err := runApp(t, m, "", "status", "-o", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "state")
		assert.Contains(t, out, "idle")
		assert.Contains(t, out, "queue")
	})

	t.Run("fetch error", func(t *testing.T) {
		m := meta.Meta{Deps: dispatch.Deps{Status: stubStatus{err: errors.New("connection refused")}}}
		_, err := runApp(t, m, "", "status")
		assert.EqualError(t, err, "connection refused")
	})

	t.Run("real endpoint via url flag", func(t *testing.T) {
		srv := statusServer(t, http.StatusServiceUnavailable, "degraded")
		out, err := runApp(t, meta.Meta{}, "", "status", "--url", srv.URL+"/status")
		require.NoError(t, err)
		assert.Equal(t, "degraded", out)
	})
}

func TestStatus_URLPrecedence(t *testing.T) {
	fromConfig := statusServer(t, http.StatusOK, "config")
	fromEnv := statusServer(t, http.StatusOK, "env")
	fromFlag := statusServer(t, http.StatusOK, "flag")

	path := setupHome(t, "status:\n  url: "+fromConfig.URL+"/status\n")
	m := meta.Meta{ConfigPath: path}

	out, err := runApp(t, m, "", "status")
	require.NoError(t, err)
	assert.Equal(t, "config", out)

	t.Setenv("AUTOPR_STATUS_URL", fromEnv.URL+"/status")
	out, err = runApp(t, m, "", "status")
	require.NoError(t, err)
	assert.Equal(t, "env", out)

	out, err = runApp(t, m, "", "status", "--url", fromFlag.URL+"/status")
	require.NoError(t, err)
	assert.Equal(t, "flag", out)
}

func TestStatus_WatchPlain(t *testing.T) {
	setupHome(t, "")
	srv := statusServer(t, http.StatusOK, "engine:\n  up\n")

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	out, err := runAppCtx(ctx, t, meta.Meta{}, "", "status", "--watch", "--interval", "20ms", "--url", srv.URL)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], " 200 engine: up")
}

func TestStatus_WatchRejectsBadInterval(t *testing.T) {
	setupHome(t, "")
	_, err := runApp(t, meta.Meta{}, "", "status", "--watch", "--interval", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}

func TestPrintReading(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var b bytes.Buffer
	printReading(&b, statusReading(at, 200, "a\n  b"), nil)
	assert.Equal(t, "2026-01-02T03:04:05Z 200 a b\n", b.String())

	b.Reset()
	printReading(&b, statusReading(at, 0, "x"), nil)
	assert.Equal(t, "2026-01-02T03:04:05Z x\n", b.String())

	b.Reset()
	printReading(&b, statusReading(at, 0, ""), errors.New("refused"))
	assert.Contains(t, b.String(), " error: refused")
}

func statusReading(at time.Time, code int, body string) status.Reading {
	return status.Reading{Body: body, StatusCode: code, FetchedAt: at}
}

func TestStatusReader(t *testing.T) {
	setupHome(t, "")
	app := NewApp(meta.Meta{Deps: dispatch.Deps{Status: stubStatus{body: "ok"}}})

	statusCmd := app.Commands[1]
	r := statusReader(statusCmd, "http://unused")
	reading, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", reading.Body)
	assert.False(t, reading.FetchedAt.IsZero())
}

func TestConfigCommands(t *testing.T) {
	path := setupHome(t, "")
	m := meta.Meta{ConfigPath: path, Deps: dispatch.Deps{Status: stubStatus{}}}

	_, err := runApp(t, m, "", "config", "read")
	assert.Error(t, err, "missing document")

	doc := "repository: acme/widgets\nllm:\n  provider: openai\n  max_retries: 5\n"
	_, err = runApp(t, m, doc, "config", "write", "-")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(b))

	out, err := runApp(t, m, "", "config", "read")
	require.NoError(t, err)
	assert.Equal(t, doc, out)

	out, err = runApp(t, m, "", "config", "read", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"repository":"acme/widgets","llm":{"provider":"openai","max_retries":5}}`, out)

	t.Run("get", func(t *testing.T) {
		out, err := runApp(t, m, "", "config", "get", "llm.provider")
		require.NoError(t, err)
		assert.Equal(t, "openai\n", out)

		out, err = runApp(t, m, "", "config", "get", "llm", "-o", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"provider":"openai","max_retries":5}`, out)

		_, err = runApp(t, m, "", "config", "get", "llm.nope")
		assert.EqualError(t, err, `key "llm.nope" not found`)

		_, err = runApp(t, m, "", "config", "get")
		assert.EqualError(t, err, "a key is required")
	})

	t.Run("path", func(t *testing.T) {
		out, err := runApp(t, m, "", "config", "path")
		require.NoError(t, err)
		assert.Equal(t, path+"\n", out)

		out, err = runApp(t, m, "", "config", "path", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "exists: true")
		assert.Contains(t, out, "size:")
	})

	t.Run("write from file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "new.yaml")
		require.NoError(t, os.WriteFile(src, []byte("a: 1\n"), 0o644))

		_, err := runApp(t, m, "", "config", "write", src)
		require.NoError(t, err)

		out, err := runApp(t, m, "", "config", "read")
		require.NoError(t, err)
		assert.Equal(t, "a: 1\n", out)

		_, err = runApp(t, m, "", "config", "write", filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestConfigDiff(t *testing.T) {
	path := setupHome(t, "llm:\n  provider: openai\n")
	m := meta.Meta{ConfigPath: path, Deps: dispatch.Deps{Status: stubStatus{}}}

	out, err := runApp(t, m, "llm: {provider: openai}\n", "config", "diff")
	require.NoError(t, err)
	assert.Equal(t, "The configurations are identical.\n", out)

	out, err = runApp(t, m, "llm:\n  provider: anthropic\n", "config", "diff", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "openai")
	assert.Contains(t, out, "anthropic")

	// diff alone never writes
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "llm:\n  provider: openai\n", string(b))

	out, err = runApp(t, m, "llm:\n  provider: anthropic\n", "config", "write", "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic")

	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "llm:\n  provider: anthropic\n", string(b))

	_, err = runApp(t, m, "a: [\n", "config", "write", "--diff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proposed config")
}

func TestInvoke(t *testing.T) {
	setupHome(t, "")
	m := meta.Meta{Deps: dispatch.Deps{Status: stubStatus{body: "up"}}}

	out, err := runApp(t, m, "", "invoke", "greet", `{"name":"Bo"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"greet","ok":true,"value":"Hello, Bo! You've been greeted from Go!"}`, out)

	out, err = runApp(t, m, "", "invoke", "get_status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"get_status","ok":true,"value":"up"}`, out)

	out, err = runApp(t, m, `{"name":"stdin"}`, "invoke", "greet", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, stdin!")

	out, err = runApp(t, m, "", "invoke", "launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Contains(t, out, `"ok": false`)

	_, err = runApp(t, m, "", "invoke")
	assert.EqualError(t, err, "a command name is required")
}

func TestCompletion(t *testing.T) {
	out, err := runApp(t, meta.Meta{}, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _autopr autopr")

	assert.Contains(t, out, `local common="--color -c --filter -f --output -o --titles -t"`)
	assert.Contains(t, out, "--grep -g")

	out, err = runApp(t, meta.Meta{}, "", "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef autopr")
	assert.Contains(t, out, "{-f,--filter}")
	assert.Contains(t, out, "'logs:follow the sidecar log stream'")

	t.Setenv("SHELL", "/bin/zsh")
	out, err = runApp(t, meta.Meta{}, "", "completion")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef autopr")

	t.Setenv("SHELL", "/bin/fish")
	_, err = runApp(t, meta.Meta{}, "", "completion")
	assert.Error(t, err)
}

func TestOutputValidator(t *testing.T) {
	for _, f := range []string{"raw", "text", "json", "yaml"} {
		assert.NoError(t, OutputValidator(f))
	}
	assert.Error(t, OutputValidator("JSON"))
	assert.Error(t, OutputValidator(42))
	assert.NoError(t, FlagValidators("raw"))
}

func TestFlagsAreSorted(t *testing.T) {
	app := NewApp(meta.Meta{})
	for _, c := range app.Commands {
		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], c.Name)
		}
	}
}
