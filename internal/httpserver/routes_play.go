// internal/httpserver/routes_play.go
//
// HTTP routes for playing a crossword.
// Exposes endpoints under /play:
//   - POST /play/start     → open (or resume) a session on a game
//   - POST /play/click     → select the active clue for a cell
//   - POST /play/input     → apply a single-character cell edit
//   - POST /play/backspace → backspace handling (clear or step back)
//   - GET  /play/state     → current snapshot (tab-refocus reload)
//
// Sessions are held in memory for active play, keyed by userID|gameID;
// each wraps a session.Controller that owns the player's answers and
// debounces persistence. Solution letters are never shipped to the
// client — the grid is described by blocked/numbered cell metadata plus
// clue lengths; only the player's own entries come back.

package httpserver

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tekateki/go-server/internal/crossword"
	"github.com/tekateki/go-server/internal/session"
	"github.com/tekateki/go-server/internal/store"
)

// playServer wraps dependencies for /play endpoints.
type playServer struct {
	srv       *Server
	saveDelay time.Duration
	sessions  map[string]*session.Controller // keyed userID|gameID
	mu        sync.Mutex                     // guards sessions
}

// mountPlay registers all /play routes.
func (s *Server) mountPlay(r chi.Router) {
	delay := session.DefaultSaveDelay
	if ms := envInt("SAVE_DEBOUNCE_MS", 0); ms > 0 {
		delay = time.Duration(ms) * time.Millisecond
	}
	p := &playServer{
		srv:       s,
		saveDelay: delay,
		sessions:  make(map[string]*session.Controller),
	}
	s.play = p
	r.Route("/play", func(r chi.Router) {
		r.Post("/start", p.handleStart)
		r.Post("/click", p.handleClick)
		r.Post("/input", p.handleInput)
		r.Post("/backspace", p.handleBackspace)
		r.Get("/state", p.handleState)
	})
}

// userID returns the authenticated user ID if logged in, otherwise a
// stable anonymous cookie ID.
func (p *playServer) userID(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return p.srv.ensureAnonID(w, r)
}

// resolveGame loads the requested game, or the active one when no ID is
// given.
func (p *playServer) resolveGame(r *http.Request, gameID string) (*store.Game, error) {
	if gameID == "" {
		return p.srv.store.ActiveGame(r.Context())
	}
	return p.srv.store.GetGame(r.Context(), gameID)
}

// getSession returns the live controller for (user, game), creating and
// starting one if needed.
func (p *playServer) getSession(r *http.Request, uid string, g *store.Game) (*session.Controller, error) {
	key := uid + "|" + g.ID
	p.mu.Lock()
	if c, ok := p.sessions[key]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c := session.New(uid, g.ID, p.srv.store, session.Config{
		SaveDelay: p.saveDelay,
		Logger:    log.Logger,
	})
	if err := c.Start(r.Context(), g.GridSize, g.GridSize); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.sessions[key]; ok {
		// Lost the race; keep the first one.
		return existing, nil
	}
	p.sessions[key] = c
	return c, nil
}

// flushAll persists every live session immediately. Called on shutdown.
func (p *playServer) flushAll() {
	p.mu.Lock()
	list := make([]*session.Controller, 0, len(p.sessions))
	for _, c := range p.sessions {
		list = append(list, c)
	}
	p.mu.Unlock()

	ctx, cancel := contextWithFlushTimeout()
	defer cancel()
	for _, c := range list {
		c.Flush(ctx)
	}
}

// -----------------------------------------------------------------------------
// /play/start

type startReq struct {
	GameID string `json:"gameId"` // empty = active game
}

// clueView is the player-facing clue shape: no answer text.
type clueView struct {
	ID        int                 `json:"id"`
	Text      string              `json:"clue"`
	Direction crossword.Direction `json:"direction"`
	StartRow  int                 `json:"startRow"`
	StartCol  int                 `json:"startCol"`
	Length    int                 `json:"length"`
	Number    int                 `json:"number"` // on-grid display number
}

// cellView describes one grid cell for rendering.
type cellView struct {
	Blocked bool `json:"blocked"`
	Number  int  `json:"number,omitempty"`
}

type startRes struct {
	Game    *store.Game       `json:"game"`
	Clues   []clueView        `json:"clues"`
	Cells   [][]cellView      `json:"cells"`
	Answers crossword.Answers `json:"answers"` // restored progress
	State   crossword.State   `json:"state"`
}

// handleStart opens or resumes a play session and returns everything the
// client needs to render the board. A missing clue list is a hard 404 —
// there is nothing to play.
func (p *playServer) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	_ = decodeJSON(r, &req)

	g, err := p.resolveGame(r, req.GameID)
	if err != nil {
		http.Error(w, `{"error":"game_not_found"}`, http.StatusNotFound)
		return
	}
	uid := p.userID(w, r)
	c, err := p.getSession(r, uid, g)
	if err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("could not load game")
		http.Error(w, `{"error":"could_not_load_game"}`, http.StatusNotFound)
		return
	}

	clues, grid, answers, state := c.Snapshot()
	writeJSON(w, startRes{
		Game:    g,
		Clues:   cluesToViews(clues),
		Cells:   cellsFor(clues, grid),
		Answers: answers,
		State:   state,
	})
}

// cluesToViews strips answers and attaches on-grid numbers.
func cluesToViews(clues []crossword.Clue) []clueView {
	out := make([]clueView, 0, len(clues))
	for _, c := range clues {
		n, _ := crossword.NumberAt(clues, c.StartRow, c.StartCol)
		out = append(out, clueView{
			ID:        c.ID,
			Text:      c.Text,
			Direction: c.Direction,
			StartRow:  c.StartRow,
			StartCol:  c.StartCol,
			Length:    c.Len(),
			Number:    n,
		})
	}
	return out
}

// cellsFor derives blocked/numbering metadata without exposing letters.
func cellsFor(clues []crossword.Clue, g crossword.Grid) [][]cellView {
	out := make([][]cellView, g.Rows())
	for row := range out {
		out[row] = make([]cellView, g.Cols())
		for col := range out[row] {
			cv := cellView{Blocked: g.BlockedAt(row, col)}
			if !cv.Blocked {
				if n, ok := crossword.NumberAt(clues, row, col); ok {
					cv.Number = n
				}
			}
			out[row][col] = cv
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// /play/click

type clickReq struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type clickRes struct {
	ActiveClueID int  `json:"activeClueId"` // 0 = no selection change
	Selected     bool `json:"selected"`
}

// handleClick selects the active clue for a cell. Blocked and solved
// cells are no-ops, reported as Selected=false.
func (p *playServer) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	c, ok := p.sessionFor(w, r, req.GameID)
	if !ok {
		return
	}
	clue := c.Click(req.Row, req.Col)
	if clue == nil {
		writeJSON(w, clickRes{})
		return
	}
	writeJSON(w, clickRes{ActiveClueID: clue.ID, Selected: true})
}

// -----------------------------------------------------------------------------
// /play/input

type inputReq struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Value  string `json:"value"` // single character; empty clears
}

// handleInput applies one cell edit and returns the re-evaluated state,
// newly completed clue IDs, and the next cell to focus.
func (p *playServer) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	c, ok := p.sessionFor(w, r, req.GameID)
	if !ok {
		return
	}
	res, err := c.Input(r.Context(), req.Row, req.Col, req.Value)
	if err != nil {
		if errors.Is(err, session.ErrBlockedCell) {
			http.Error(w, `{"error":"blocked_cell"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"input_failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

// -----------------------------------------------------------------------------
// /play/backspace

// handleBackspace clears the cell or steps focus backward.
func (p *playServer) handleBackspace(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	c, ok := p.sessionFor(w, r, req.GameID)
	if !ok {
		return
	}
	res, err := c.Backspace(r.Context(), req.Row, req.Col)
	if err != nil {
		if errors.Is(err, session.ErrBlockedCell) {
			http.Error(w, `{"error":"blocked_cell"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"input_failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

// -----------------------------------------------------------------------------
// /play/state

type stateRes struct {
	Answers crossword.Answers `json:"answers"`
	State   crossword.State   `json:"state"`
}

// handleState returns the current snapshot for a resumed/refocused tab.
func (p *playServer) handleState(w http.ResponseWriter, r *http.Request) {
	c, ok := p.sessionFor(w, r, r.URL.Query().Get("gameId"))
	if !ok {
		return
	}
	_, _, answers, state := c.Snapshot()
	writeJSON(w, stateRes{Answers: answers, State: state})
}

// sessionFor resolves the session for the request, writing an error
// response when the game cannot be loaded.
func (p *playServer) sessionFor(w http.ResponseWriter, r *http.Request, gameID string) (*session.Controller, bool) {
	g, err := p.resolveGame(r, gameID)
	if err != nil {
		http.Error(w, `{"error":"game_not_found"}`, http.StatusNotFound)
		return nil, false
	}
	uid := p.userID(w, r)
	c, err := p.getSession(r, uid, g)
	if err != nil {
		http.Error(w, `{"error":"could_not_load_game"}`, http.StatusNotFound)
		return nil, false
	}
	return c, true
}
