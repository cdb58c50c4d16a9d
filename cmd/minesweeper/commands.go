// cmd/minesweeper/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/Ftotnem/minesweeper/api"
	"github.com/Ftotnem/minesweeper/internal/session"
)

const usage = `usage: minesweeper <command> [arguments]

commands:
  new ROWS COLUMNS BOMBS        create a game
  get  [-game ID]               show a game
  mark [-game ID] ROW COLUMN    mark or unmark a square
  play [-game ID] ROW COLUMN    play a square
  use ID                        make ID the current game
  current                       print the current game ID
  forget                        clear the current game

-game defaults to the current game when MINESWEEPER_REDIS_ADDR is set.
Put "--" before negative numbers.
`

// gameAPI is the part of service.GameClient the CLI uses.
type gameAPI interface {
	CreateGame(ctx context.Context, rows, columns, bombs int) (api.Value, error)
	GetGame(ctx context.Context, gameID string) (api.Value, error)
	MarkSquare(ctx context.Context, gameID string, row, column int) (api.Value, error)
	PlaySquare(ctx context.Context, gameID string, row, column int) (api.Value, error)
}

type squareFunc func(ctx context.Context, gameID string, row, column int) (api.Value, error)

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type app struct {
	games    gameAPI
	sessions session.Store // nil when no store is configured
	out      io.Writer
	log      *slog.Logger
}

func (a *app) run(ctx context.Context, args []string) error {
	err := a.dispatch(ctx, args)
	if errors.Is(err, flag.ErrHelp) {
		_, err = io.WriteString(a.out, usage)
	}
	return err
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "new":
		return a.newGame(ctx, rest)
	case "get":
		return a.getGame(ctx, rest)
	case "mark":
		return a.square(ctx, cmd, rest, a.games.MarkSquare)
	case "play":
		return a.square(ctx, cmd, rest, a.games.PlaySquare)
	case "use":
		return a.use(ctx, rest)
	case "current":
		return a.current(ctx, rest)
	case "forget":
		return a.forget(ctx, rest)
	case "help", "-h", "-help", "--help":
		_, err := io.WriteString(a.out, usage)
		return err
	}
	return usageErrorf("unknown command %q", cmd)
}

func (a *app) newGame(ctx context.Context, args []string) error {
	fs := newFlagSet("new")
	if err := fs.Parse(args); err != nil {
		return flagError("new", err)
	}
	nums, err := intArgs("new", fs.Args(), "ROWS", "COLUMNS", "BOMBS")
	if err != nil {
		return err
	}

	game, err := a.games.CreateGame(ctx, nums[0], nums[1], nums[2])
	if err != nil {
		return err
	}
	if err := a.print(game); err != nil {
		return err
	}

	a.remember(ctx, game)
	return nil
}

// remember makes a newly created game current. The API payload is only
// looked at for a top-level string "id"; anything else is left alone.
func (a *app) remember(ctx context.Context, game api.Value) {
	if a.sessions == nil {
		return
	}
	idField, ok := game.Get("id")
	if !ok {
		return
	}
	id, ok := idField.Text()
	if !ok || id == "" {
		return
	}
	if err := a.sessions.SetCurrent(ctx, id); err != nil {
		a.log.Warn("could not remember current game", "game_id", id, "error", err)
		return
	}
	a.log.Debug("current game set", "game_id", id)
}

func (a *app) getGame(ctx context.Context, args []string) error {
	fs := newFlagSet("get")
	gameFlag := fs.String("game", "", "game ID")
	if err := fs.Parse(args); err != nil {
		return flagError("get", err)
	}
	if fs.NArg() != 0 {
		return usageErrorf("get: unexpected arguments %v", fs.Args())
	}
	gameID, err := a.resolveGame(ctx, *gameFlag)
	if err != nil {
		return err
	}

	game, err := a.games.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return a.print(game)
}

func (a *app) square(ctx context.Context, name string, args []string, fn squareFunc) error {
	fs := newFlagSet(name)
	gameFlag := fs.String("game", "", "game ID")
	if err := fs.Parse(args); err != nil {
		return flagError(name, err)
	}
	nums, err := intArgs(name, fs.Args(), "ROW", "COLUMN")
	if err != nil {
		return err
	}
	gameID, err := a.resolveGame(ctx, *gameFlag)
	if err != nil {
		return err
	}

	game, err := fn(ctx, gameID, nums[0], nums[1])
	if err != nil {
		return err
	}
	return a.print(game)
}

func (a *app) use(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return usageErrorf("use: expected exactly one game ID")
	}
	if a.sessions == nil {
		return usageErrorf("use: no session store configured (set MINESWEEPER_REDIS_ADDR)")
	}
	return a.sessions.SetCurrent(ctx, args[0])
}

func (a *app) current(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usageErrorf("current: unexpected arguments %v", args)
	}
	if a.sessions == nil {
		return usageErrorf("current: no session store configured (set MINESWEEPER_REDIS_ADDR)")
	}
	id, err := a.sessions.Current(ctx)
	if errors.Is(err, session.ErrNoGame) {
		return usageErrorf("no current game; start one with \"new\" or pick one with \"use\"")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, id)
	return err
}

func (a *app) forget(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usageErrorf("forget: unexpected arguments %v", args)
	}
	if a.sessions == nil {
		return nil
	}
	return a.sessions.Clear(ctx)
}

func (a *app) resolveGame(ctx context.Context, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if a.sessions == nil {
		return "", usageErrorf("no game given: pass -game ID or set MINESWEEPER_REDIS_ADDR")
	}
	id, err := a.sessions.Current(ctx)
	if errors.Is(err, session.ErrNoGame) {
		return "", usageErrorf("no current game; pass -game ID or start one with \"new\"")
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (a *app) print(v api.Value) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// flagError turns a flag parsing failure into a usage error. A request for
// help is passed through as flag.ErrHelp.
func flagError(cmd string, err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return usageErrorf("%s: %v", cmd, err)
}

// intArgs parses exactly len(names) integers. Their range is not checked.
func intArgs(cmd string, args []string, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, usageErrorf("%s: expected %v, got %d arguments", cmd, names, len(args))
	}
	nums := make([]int, len(args))
	for i, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, usageErrorf("%s: %s must be an integer, got %q", cmd, names[i], s)
		}
		nums[i] = n
	}
	return nums, nil
}
