package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ftotnem/minesweeper/api"
	"github.com/Ftotnem/minesweeper/apitest"
	"github.com/Ftotnem/minesweeper/internal/session"
	"github.com/Ftotnem/minesweeper/service"
)

type memoryStore struct {
	current string
	err     error
}

func (m *memoryStore) Current(context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.current == "" {
		return "", session.ErrNoGame
	}
	return m.current, nil
}

func (m *memoryStore) SetCurrent(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.current = id
	return nil
}

func (m *memoryStore) Clear(context.Context) error {
	m.current = ""
	return m.err
}

type fixture struct {
	app   *app
	srv   *apitest.Server
	out   *bytes.Buffer
	store *memoryStore
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	f := &fixture{srv: srv, out: &bytes.Buffer{}}
	f.app = &app{
		games: service.NewGameClient(service.Config{BaseAddress: srv.URL, HTTPClient: srv.Client()}),
		out:   f.out,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if withStore {
		f.store = &memoryStore{}
		f.app.sessions = f.store
	}
	return f
}

func (f *fixture) run(args ...string) error {
	return f.app.run(context.Background(), args)
}

func isUsage(err error) bool {
	var usageErr *usageError
	return errors.As(err, &usageErr)
}

func TestNew(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.run("new", "8", "8", "10"))

	reqs := f.srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.JSONEq(t, `{"rows":8,"columns":8,"bombs":10}`, string(reqs[0].Body))

	printed, err := api.ParseValue(f.out)
	require.NoError(t, err)
	id, _ := printed.Get("id")
	idText, _ := id.Text()
	assert.NotEmpty(t, idText)
	assert.Equal(t, idText, f.store.current)
}

func TestNew_ErrorPayloadIsNotRemembered(t *testing.T) {
	f := newFixture(t, true)
	f.srv.Enqueue(apitest.Reply{Status: http.StatusBadRequest, Body: `{"status":400,"code":"invalid_input","message":"invalid body","data":null}`})

	require.NoError(t, f.run("new", "1", "1", "9"))
	assert.Contains(t, f.out.String(), `"code": "invalid_input"`)
	assert.Empty(t, f.store.current)
}

func TestNew_StoreFailureStillPrints(t *testing.T) {
	f := newFixture(t, true)
	f.store.err = errors.New("redis down")

	require.NoError(t, f.run("new", "3", "3", "1"))
	assert.Contains(t, f.out.String(), `"state": "in_progress"`)
}

func TestNew_NegativeNumbers(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.run("new", "--", "-3", "3", "-1"))

	reqs := f.srv.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"rows":-3,"columns":3,"bombs":-1}`, string(reqs[0].Body))
}

func TestSquareCommands(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		method string
		path   string
		body   string
	}{
		{name: "get with flag", args: []string{"get", "-game", "g1"}, method: http.MethodGet, path: "/games/g1"},
		{name: "mark with flag", args: []string{"mark", "-game", "g1", "1", "2"}, method: http.MethodPut, path: "/games/g1/mark-square", body: `{"row":1,"column":2}`},
		{name: "play with flag", args: []string{"play", "-game", "g1", "0", "0"}, method: http.MethodPut, path: "/games/g1/play-square", body: `{"row":0,"column":0}`},
		{name: "play current game", args: []string{"play", "2", "1"}, method: http.MethodPut, path: "/games/current/play-square", body: `{"row":2,"column":1}`},
		{name: "get current game", args: []string{"get"}, method: http.MethodGet, path: "/games/current"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.store.current = "current"
			f.srv.AddGame(apitest.Game{ID: "g1"})
			f.srv.AddGame(apitest.Game{ID: "current"})

			require.NoError(t, f.run(tt.args...))

			reqs := f.srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, tt.method, reqs[0].Method)
			assert.Equal(t, tt.path, reqs[0].Path)
			if tt.body == "" {
				assert.Empty(t, reqs[0].Body)
			} else {
				assert.JSONEq(t, tt.body, string(reqs[0].Body))
			}
			assert.True(t, strings.HasPrefix(f.out.String(), "{\n"))
		})
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name      string
		withStore bool
		args      []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"reveal"}},
		{name: "new missing args", args: []string{"new", "8", "8"}},
		{name: "new non-integer", args: []string{"new", "8", "eight", "10"}},
		{name: "mark without game or store", args: []string{"mark", "1", "1"}},
		{name: "play without current game", withStore: true, args: []string{"play", "1", "1"}},
		{name: "get extra args", withStore: true, args: []string{"get", "-game", "x", "y"}},
		{name: "unknown flag", args: []string{"get", "-id", "x"}},
		{name: "use without store", args: []string{"use", "x"}},
		{name: "use without id", withStore: true, args: []string{"use"}},
		{name: "current without game", withStore: true, args: []string{"current"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.withStore)

			err := f.run(tt.args...)
			assert.True(t, isUsage(err), "expected usage error, got %v", err)
			assert.Empty(t, f.srv.Requests())
		})
	}
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{
		{"help"},
		{"--help"},
		{"new", "-h"},
		{"get", "-h"},
		{"mark", "-help"},
		{"play", "-h", "1", "1"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			f := newFixture(t, false)

			require.NoError(t, f.run(args...))
			assert.Equal(t, usage, f.out.String())
			assert.Empty(t, f.srv.Requests())
		})
	}
}

func TestSessionCommands(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.run("use", "abc123"))
	assert.Equal(t, "abc123", f.store.current)

	require.NoError(t, f.run("current"))
	assert.Equal(t, "abc123\n", f.out.String())

	require.NoError(t, f.run("forget"))
	assert.Empty(t, f.store.current)
	assert.Empty(t, f.srv.Requests())
}

func TestDecodeFailure(t *testing.T) {
	f := newFixture(t, false)
	f.srv.Enqueue(apitest.Reply{Status: http.StatusBadGateway, Body: "<html>Bad Gateway</html>"})

	err := f.run("get", "-game", "g1")

	var decodeErr *api.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Empty(t, f.out.String())
}

func TestExitCode(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Equal(t, 0, exitCode(log, nil))
	assert.Equal(t, 2, exitCode(log, usageErrorf("bad")))
	assert.Equal(t, 1, exitCode(log, &api.TransportError{Method: "GET", URL: "http://x/games/1", Err: errors.New("refused")}))
	assert.Equal(t, 1, exitCode(log, &api.DecodeError{Method: "GET", URL: "http://x/games/1", StatusCode: 502, Err: errors.New("invalid")}))
	assert.Equal(t, 1, exitCode(log, errors.New("other")))
}

func TestRun_WritesMetricsTextfile(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "minesweeper.prom")
	clearEnv(t)
	t.Setenv("MINESWEEPER_API_URL", srv.URL)
	t.Setenv("MINESWEEPER_METRICS_TEXTFILE", path)
	t.Setenv("LOG_LEVEL", "error")

	code := run([]string{"new", "3", "3", "1"})
	assert.Equal(t, 0, code)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `minesweeper_client_requests_total{code="201",method="post"} 1`)
}
