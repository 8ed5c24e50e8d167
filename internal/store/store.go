// internal/store/store.go
//
// Persistence contract for crossword games, clues, and player progress.
// Implementations may be backed by SQLite (sqlite.go) or memory
// (memory.go). The play path needs only the progress operations; the
// admin surface needs the game/clue CRUD.

package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/tekateki/go-server/internal/crossword"
)

// ErrNotFound is returned when a requested game does not exist.
var ErrNotFound = errors.New("not found")

// Game is an authored crossword game. At most one game is active at a
// time; the active one is what players are served by default.
type Game struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"createdBy"`
	GridSize  int       `json:"gridSize"` // square N×N grid
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlayerScore is one player's persisted progress/score for a game.
type PlayerScore struct {
	UserID         string    `json:"userId"`
	Username       string    `json:"username,omitempty"` // joined for score views; may be empty
	GameID         string    `json:"gameId"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	IsCompleted    bool      `json:"isCompleted"`
	CompletionSecs int       `json:"completionSecs"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Store is the full persistence interface.
type Store interface {
	// LoadClues returns a game's clues in authored order.
	// Returns ErrNotFound if the game does not exist.
	LoadClues(ctx context.Context, gameID string) ([]crossword.Clue, error)

	// LoadProgress returns the player's saved answers for a game, or an
	// empty map when there is no prior progress.
	LoadProgress(ctx context.Context, userID, gameID string) (crossword.Answers, error)

	// SaveProgress persists the full answer snapshot plus the derived
	// score and completed-clue count. Full-replace semantics, idempotent.
	SaveProgress(ctx context.Context, userID, gameID string, answers crossword.Answers, score, completed int) error

	// IncrementScore adds points to the player's running score.
	IncrementScore(ctx context.Context, userID, gameID string, points int) error

	// MarkCompleted records that the player finished the game and how
	// long it took.
	MarkCompleted(ctx context.Context, userID, gameID string, elapsedSeconds int) error

	// CreateGame inserts a new game and makes it the only active one.
	CreateGame(ctx context.Context, title, createdBy string, gridSize int) (*Game, error)

	// ReplaceClues swaps a game's entire clue list (delete + insert).
	ReplaceClues(ctx context.Context, gameID string, clues []crossword.Clue) error

	// ActiveGame returns the most recently created active game.
	ActiveGame(ctx context.Context) (*Game, error)

	// GetGame returns a game by ID.
	GetGame(ctx context.Context, gameID string) (*Game, error)

	// ListGames returns all games, most recent first.
	ListGames(ctx context.Context) ([]*Game, error)

	// SetActive makes the given game the only active one.
	SetActive(ctx context.Context, gameID string) error

	// Scores returns all player scores for a game, best first.
	Scores(ctx context.Context, gameID string) ([]PlayerScore, error)
}

// newID returns a compact 16-hex-char identifier for new games.
func newID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
