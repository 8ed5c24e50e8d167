// internal/sample/sample.go
//
// Ships a small embedded default puzzle so a fresh server is playable
// before any admin authors a game.
//
// Initialization behavior (Seed):
//   1. If the store already has any game, do nothing.
//   2. If SAMPLE_PUZZLE_FILE is set, load the puzzle from that file.
//   3. Otherwise fall back to the embedded default_puzzle.json.

package sample

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tekateki/go-server/internal/crossword"
	"github.com/tekateki/go-server/internal/store"
)

//go:embed default_puzzle.json
var embeddedPuzzle []byte

// Puzzle is the on-disk/embedded authoring format.
type Puzzle struct {
	Title    string           `json:"title"`
	GridSize int              `json:"gridSize"`
	Clues    []crossword.Clue `json:"clues"`
}

// Load parses a puzzle, normalizing answers to uppercase and dropping
// clues that cannot be played (empty answer, bad direction).
func Load(raw []byte) (*Puzzle, error) {
	var p Puzzle
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse puzzle: %w", err)
	}
	if p.GridSize <= 0 {
		p.GridSize = 10
	}
	kept := p.Clues[:0]
	for _, c := range p.Clues {
		c.Answer = strings.ToUpper(strings.TrimSpace(c.Answer))
		if c.Answer == "" || !c.Direction.Valid() {
			continue
		}
		kept = append(kept, c)
	}
	p.Clues = kept
	return &p, nil
}

// Default returns the embedded puzzle.
func Default() (*Puzzle, error) {
	return Load(embeddedPuzzle)
}

// Seed creates the default game when the store is empty. Returns the
// seeded game, or nil when nothing was seeded.
func Seed(ctx context.Context, st store.Store) (*store.Game, error) {
	games, err := st.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	if len(games) > 0 {
		return nil, nil
	}

	raw := embeddedPuzzle
	if path := os.Getenv("SAMPLE_PUZZLE_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		raw = b
	}
	p, err := Load(raw)
	if err != nil {
		return nil, err
	}

	g, err := st.CreateGame(ctx, p.Title, "system", p.GridSize)
	if err != nil {
		return nil, fmt.Errorf("create sample game: %w", err)
	}
	if err := st.ReplaceClues(ctx, g.ID, p.Clues); err != nil {
		return nil, fmt.Errorf("seed clues: %w", err)
	}
	return g, nil
}
