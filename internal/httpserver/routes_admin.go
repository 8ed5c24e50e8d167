// internal/httpserver/routes_admin.go
//
// Admin endpoints for managing crossword games.
// All routes require an authenticated user with the admin role.
//   - POST /admin/games               → create a game with its clues
//   - GET  /admin/games               → list all games
//   - PUT  /admin/games/{id}/clues    → replace a game's clue list
//   - POST /admin/games/{id}/activate → make a game the active one
//   - GET  /admin/games/{id}/scores     → player scores (JSON)
//   - GET  /admin/games/{id}/scores.csv → player scores (CSV download)
//
// Clue coordinates arrive 1-based from the editor UI and are stored
// 0-based. Answers must be A-Z only and fit inside the grid.

package httpserver

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tekateki/go-server/internal/crossword"
	"github.com/tekateki/go-server/internal/store"
)

const (
	minGridSize = 5
	maxGridSize = 20
)

// mountAdmin registers /admin routes behind auth + admin-role checks.
func (s *Server) mountAdmin() {
	s.r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Use(s.requireAdmin())

		r.Post("/games", s.handleCreateGame)
		r.Get("/games", s.handleListGames)
		r.Put("/games/{id}/clues", s.handleReplaceClues)
		r.Post("/games/{id}/activate", s.handleActivateGame)
		r.Get("/games/{id}/scores", s.handleScores)
		r.Get("/games/{id}/scores.csv", s.handleScoresCSV)
	})
}

// clueInput is the editor-facing clue shape (1-based coordinates).
type clueInput struct {
	ID        int    `json:"id"`
	Text      string `json:"clue"`
	Answer    string `json:"answer"`
	Direction string `json:"direction"` // "horizontal" | "vertical"
	StartRow  int    `json:"startRow"`  // 1-based
	StartCol  int    `json:"startCol"`  // 1-based
}

type createGameReq struct {
	Title    string      `json:"title"`
	GridSize int         `json:"gridSize"`
	Clues    []clueInput `json:"clues"`
}

// handleCreateGame creates a game together with its clue list. The new
// game becomes the active one.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		badValidation(w, "title is required")
		return
	}
	if req.GridSize < minGridSize || req.GridSize > maxGridSize {
		badValidation(w, fmt.Sprintf("gridSize must be between %d and %d", minGridSize, maxGridSize))
		return
	}
	clues, err := validateClues(req.Clues, req.GridSize)
	if err != nil {
		badValidation(w, err.Error())
		return
	}

	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	g, err := s.store.CreateGame(r.Context(), req.Title, me.ID, req.GridSize)
	if err != nil {
		log.Error().Err(err).Msg("create game")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.ReplaceClues(r.Context(), g.ID, clues); err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("store clues")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, g)
}

// handleListGames lists every game, newest first.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"games": games})
}

type replaceCluesReq struct {
	Clues []clueInput `json:"clues"`
}

// handleReplaceClues swaps out the full clue list of an existing game.
func (s *Server) handleReplaceClues(w http.ResponseWriter, r *http.Request) {
	g, ok := s.adminGame(w, r)
	if !ok {
		return
	}
	var req replaceCluesReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	clues, err := validateClues(req.Clues, g.GridSize)
	if err != nil {
		badValidation(w, err.Error())
		return
	}
	if err := s.store.ReplaceClues(r.Context(), g.ID, clues); err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("replace clues")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "count": len(clues)})
}

// handleActivateGame makes the game the single active one.
func (s *Server) handleActivateGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.adminGame(w, r)
	if !ok {
		return
	}
	if err := s.store.SetActive(r.Context(), g.ID); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// handleScores returns every player's score row for a game.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	g, ok := s.adminGame(w, r)
	if !ok {
		return
	}
	rows, err := s.store.Scores(r.Context(), g.ID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"gameId": g.ID, "scores": rows})
}

// handleScoresCSV streams the score table as a CSV download.
func (s *Server) handleScoresCSV(w http.ResponseWriter, r *http.Request) {
	g, ok := s.adminGame(w, r)
	if !ok {
		return
	}
	rows, err := s.store.Scores(r.Context(), g.ID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="scores-`+g.ID+`.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"username", "score", "correct_answers", "completed", "completion_secs", "updated_at"})
	for _, p := range rows {
		_ = cw.Write([]string{
			p.Username,
			strconv.Itoa(p.Score),
			strconv.Itoa(p.CorrectAnswers),
			strconv.FormatBool(p.IsCompleted),
			strconv.Itoa(p.CompletionSecs),
			p.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	cw.Flush()
}

// adminGame resolves the {id} URL param to a game or writes a 404.
func (s *Server) adminGame(w http.ResponseWriter, r *http.Request) (*store.Game, bool) {
	g, err := s.store.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"game_not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return g, true
}

// badValidation writes a 422 with the offending detail.
func badValidation(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	writeJSON(w, map[string]string{"error": "validation_failed", "detail": msg})
}

// validateClues checks editor input and converts it to stored clues
// (0-based coordinates, uppercase answers). Every answer must be A-Z
// only and lie fully inside the size×size grid.
func validateClues(in []clueInput, size int) ([]crossword.Clue, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("at least one clue is required")
	}
	seen := make(map[int]bool, len(in))
	out := make([]crossword.Clue, 0, len(in))
	for i, c := range in {
		if c.ID <= 0 {
			return nil, fmt.Errorf("clue %d: id must be positive", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("clue %d: duplicate id %d", i+1, c.ID)
		}
		seen[c.ID] = true
		if strings.TrimSpace(c.Text) == "" {
			return nil, fmt.Errorf("clue %d: clue text is required", i+1)
		}
		ans := strings.ToUpper(strings.TrimSpace(c.Answer))
		if ans == "" {
			return nil, fmt.Errorf("clue %d: answer is required", i+1)
		}
		for _, r := range ans {
			if r < 'A' || r > 'Z' {
				return nil, fmt.Errorf("clue %d: answer must contain only letters A-Z", i+1)
			}
		}
		dir := crossword.Direction(strings.ToLower(c.Direction))
		if !dir.Valid() {
			return nil, fmt.Errorf("clue %d: direction must be horizontal or vertical", i+1)
		}
		if c.StartRow < 1 || c.StartRow > size || c.StartCol < 1 || c.StartCol > size {
			return nil, fmt.Errorf("clue %d: start position is outside the %dx%d grid", i+1, size, size)
		}
		row, col := c.StartRow-1, c.StartCol-1
		if dir == crossword.Horizontal && col+len(ans) > size {
			return nil, fmt.Errorf("clue %d: answer %q overflows the grid to the right", i+1, ans)
		}
		if dir == crossword.Vertical && row+len(ans) > size {
			return nil, fmt.Errorf("clue %d: answer %q overflows the grid at the bottom", i+1, ans)
		}
		out = append(out, crossword.Clue{
			ID:        c.ID,
			Text:      strings.TrimSpace(c.Text),
			Answer:    ans,
			Direction: dir,
			StartRow:  row,
			StartCol:  col,
			Number:    i + 1,
		})
	}

	// Crossing clues must agree on every shared cell, or the puzzle can
	// never be completed.
	letters := make(map[string]byte)
	owners := make(map[string]int)
	for _, c := range out {
		for i := 0; i < c.Len(); i++ {
			row, col := c.Cell(i)
			key := crossword.CellKey(row, col)
			if prev, ok := letters[key]; ok && prev != c.Answer[i] {
				return nil, fmt.Errorf("clues %d and %d disagree at row %d col %d: %q vs %q",
					owners[key], c.ID, row+1, col+1, string(prev), string(c.Answer[i]))
			}
			letters[key] = c.Answer[i]
			owners[key] = c.ID
		}
	}
	return out, nil
}
