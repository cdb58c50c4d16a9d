// apitest/server.go
//
// Package apitest runs an in-process stand-in for the remote Minesweeper API.
// It does not play Minesweeper: games are opaque documents that only record
// the squares marked and played against them.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RecordedRequest is one request as received by the Server.
type RecordedRequest struct {
	Method string
	// Path is the escaped request path, exactly as sent on the wire.
	Path   string
	Header http.Header
	Body   []byte
}

// Reply is a scripted response served instead of routing the request.
type Reply struct {
	Status      int
	ContentType string
	Body        string
}

// Game is the document the Server keeps per game.
type Game struct {
	ID      string     `json:"id"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	Bombs   int        `json:"bombs"`
	State   string     `json:"state"`
	Marked  []Position `json:"marked"`
	Played  []Position `json:"played"`
}

type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// ErrorBody is the error envelope the Minesweeper API answers with.
type ErrorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type Server struct {
	*httptest.Server

	Router *mux.Router

	mu       sync.Mutex
	requests []RecordedRequest
	scripted []Reply
	games    map[string]*Game
}

// NewServer starts a Server. Callers must Close it.
func NewServer() *Server {
	s := &Server{games: make(map[string]*Game)}

	router := mux.NewRouter()
	router.UseEncodedPath()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	})

	router.HandleFunc("/games", s.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/games/{id}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/games/{id}/mark-square", s.handleMark).Methods(http.MethodPut)
	router.HandleFunc("/games/{id}/play-square", s.handlePlay).Methods(http.MethodPut)

	s.Router = router
	s.Server = httptest.NewServer(s.recordMiddleware(router))
	return s
}

// Enqueue schedules replies for the next requests, in order.
func (s *Server) Enqueue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripted = append(s.scripted, replies...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Game returns a copy of the stored game document.
func (s *Server) Game(id string) (Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return Game{}, false
	}
	return g.clone(), true
}

func (g *Game) clone() Game {
	c := *g
	c.Marked = append([]Position{}, g.Marked...)
	c.Played = append([]Position{}, g.Played...)
	return c
}

// AddGame stores a game directly, bypassing POST /games.
func (s *Server) AddGame(g Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := g.clone()
	s.games[g.ID] = &c
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		var reply *Reply
		if len(s.scripted) > 0 {
			reply = &s.scripted[0]
			s.scripted = s.scripted[1:]
		}
		s.mu.Unlock()

		if reply != nil {
			if reply.ContentType != "" {
				w.Header().Set("Content-Type", reply.ContentType)
			}
			w.WriteHeader(reply.Status)
			_, _ = io.WriteString(w, reply.Body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
		Bombs   int `json:"bombs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid body")
		return
	}

	g := &Game{
		ID:      uuid.New().String(),
		Rows:    req.Rows,
		Columns: req.Columns,
		Bombs:   req.Bombs,
		State:   "in_progress",
		Marked:  []Position{},
		Played:  []Position{},
	}

	s.mu.Lock()
	s.games[g.ID] = g
	resp := g.clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid game id")
		return
	}

	g, found := s.Game(id)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "game has not been found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	s.handleSquare(w, r, func(g *Game, pos Position) { g.Marked = append(g.Marked, pos) })
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.handleSquare(w, r, func(g *Game, pos Position) { g.Played = append(g.Played, pos) })
}

func (s *Server) handleSquare(w http.ResponseWriter, r *http.Request, apply func(*Game, Position)) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid game id")
		return
	}

	var pos Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid body")
		return
	}

	s.mu.Lock()
	g, found := s.games[id]
	var resp Game
	if found {
		apply(g, pos)
		resp = g.clone()
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "not_found", "game has not been found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func gameID(r *http.Request) (string, bool) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	return id, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Status: status, Code: code, Message: message})
}
