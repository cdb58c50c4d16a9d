// service/gameclient.go
package service

import (
	"context"
	"net/url"

	"github.com/Ftotnem/minesweeper/api"
)

// DefaultBaseAddress is the public Minesweeper API.
const DefaultBaseAddress = "http://minesweeper-api.appspot.com"

// Config holds what a GameClient needs to reach the Minesweeper API.
type Config struct {
	BaseAddress string   // e.g. "http://minesweeper-api.appspot.com"
	HTTPClient  api.Doer // optional; nil means a plain *http.Client without timeout
}

// GameClient is a client for the Minesweeper API. It holds no state between
// calls and may be shared by goroutines.
type GameClient struct {
	apiClient *api.Client
}

// NewGameClient creates a new Minesweeper API client.
func NewGameClient(cfg Config) *GameClient {
	return &GameClient{
		apiClient: api.NewClient(cfg.BaseAddress, cfg.HTTPClient),
	}
}

// CreateGameRequest is the body of POST /games.
type CreateGameRequest struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
	Bombs   int `json:"bombs"`
}

// SquareRequest is the body of the mark-square and play-square endpoints.
type SquareRequest struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// CreateGame sends a POST request to /games.
// The arguments are not validated; the API decides what it accepts.
func (c *GameClient) CreateGame(ctx context.Context, rows, columns, bombs int) (api.Value, error) {
	reqData := CreateGameRequest{
		Rows:    rows,
		Columns: columns,
		Bombs:   bombs,
	}
	return body(c.apiClient.Post(ctx, "/games", reqData))
}

// GetGame sends a GET request to /games/{gameID}.
func (c *GameClient) GetGame(ctx context.Context, gameID string) (api.Value, error) {
	return body(c.apiClient.Get(ctx, gamePath(gameID)))
}

// MarkSquare sends a PUT request to /games/{gameID}/mark-square.
func (c *GameClient) MarkSquare(ctx context.Context, gameID string, row, column int) (api.Value, error) {
	reqData := SquareRequest{Row: row, Column: column}
	return body(c.apiClient.Put(ctx, gamePath(gameID)+"/mark-square", reqData))
}

// PlaySquare sends a PUT request to /games/{gameID}/play-square.
func (c *GameClient) PlaySquare(ctx context.Context, gameID string, row, column int) (api.Value, error) {
	reqData := SquareRequest{Row: row, Column: column}
	return body(c.apiClient.Put(ctx, gamePath(gameID)+"/play-square", reqData))
}

// gamePath escapes gameID so it always names a single path segment.
func gamePath(gameID string) string {
	return "/games/" + url.PathEscape(gameID)
}

// body drops the status code: error statuses come back as their JSON payload.
func body(resp *api.Response, err error) (api.Value, error) {
	if err != nil {
		return api.Value{}, err
	}
	return resp.Body, nil
}
