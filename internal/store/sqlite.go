// internal/store/sqlite.go
//
// SQLite-backed implementation of the Store interface.
// Schema lives in ./sql migrations (see db.go at the repo root):
//   games(id, title, created_by, grid_size, is_active, created_at, updated_at)
//   clues(game_id, seq, clue_id, text, answer, direction, start_row, start_col)
//   player_scores(user_id, game_id, score, correct_answers, is_completed,
//                 completion_secs, answers_json, updated_at) UNIQUE(user_id, game_id)
//
// Answers are stored as a JSON object (cell key → letter), full-replace
// on every save, matching the engine's snapshot semantics.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tekateki/go-server/internal/crossword"
)

// SQLite implements Store on a *sql.DB opened with the sqlite3 driver.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an already-opened (and migrated) database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) LoadClues(ctx context.Context, gameID string) ([]crossword.Clue, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT clue_id, text, answer, direction, start_row, start_col, seq
        FROM clues
        WHERE game_id=?
        ORDER BY seq ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("load clues: %w", err)
	}
	defer rows.Close()

	var out []crossword.Clue
	for rows.Next() {
		var c crossword.Clue
		var dir string
		var seq int
		if err := rows.Scan(&c.ID, &c.Text, &c.Answer, &dir, &c.StartRow, &c.StartCol, &seq); err != nil {
			return nil, err
		}
		c.Direction = crossword.Direction(dir)
		c.Number = seq + 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) LoadProgress(ctx context.Context, userID, gameID string) (crossword.Answers, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE(answers_json, '{}')
        FROM player_scores
        WHERE user_id=? AND game_id=?`, userID, gameID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return crossword.Answers{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	answers := crossword.Answers{}
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		// Corrupt saved blob: fail open with empty progress rather than
		// blocking play.
		return crossword.Answers{}, nil
	}
	return answers, nil
}

func (s *SQLite) SaveProgress(ctx context.Context, userID, gameID string, answers crossword.Answers, score, completed int) error {
	blob, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO player_scores (user_id, game_id, score, correct_answers, answers_json, updated_at)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(user_id, game_id) DO UPDATE SET
            score=excluded.score,
            correct_answers=excluded.correct_answers,
            answers_json=excluded.answers_json,
            updated_at=excluded.updated_at`,
		userID, gameID, score, completed, string(blob), now())
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *SQLite) IncrementScore(ctx context.Context, userID, gameID string, points int) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO player_scores (user_id, game_id, score, correct_answers, updated_at)
        VALUES (?,?,?,1,?)
        ON CONFLICT(user_id, game_id) DO UPDATE SET
            score=score+excluded.score,
            correct_answers=correct_answers+1,
            updated_at=excluded.updated_at`,
		userID, gameID, points, now())
	if err != nil {
		return fmt.Errorf("increment score: %w", err)
	}
	return nil
}

func (s *SQLite) MarkCompleted(ctx context.Context, userID, gameID string, elapsedSeconds int) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO player_scores (user_id, game_id, is_completed, completion_secs, updated_at)
        VALUES (?,?,1,?,?)
        ON CONFLICT(user_id, game_id) DO UPDATE SET
            is_completed=1,
            completion_secs=excluded.completion_secs,
            updated_at=excluded.updated_at`,
		userID, gameID, elapsedSeconds, now())
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (s *SQLite) CreateGame(ctx context.Context, title, createdBy string, gridSize int) (*Game, error) {
	g := &Game{
		ID:        newID(),
		Title:     title,
		CreatedBy: createdBy,
		GridSize:  gridSize,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// A new game becomes the only active one.
	if _, err := tx.ExecContext(ctx, `UPDATE games SET is_active=0`); err != nil {
		return nil, fmt.Errorf("deactivate games: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO games (id, title, created_by, grid_size, is_active, created_at, updated_at)
        VALUES (?,?,?,?,1,?,?)`,
		g.ID, g.Title, g.CreatedBy, g.GridSize, g.CreatedAt.Format(time.RFC3339), g.UpdatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SQLite) ReplaceClues(ctx context.Context, gameID string, clues []crossword.Clue) error {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clues WHERE game_id=?`, gameID); err != nil {
		return fmt.Errorf("delete old clues: %w", err)
	}
	for i, c := range clues {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO clues (game_id, seq, clue_id, text, answer, direction, start_row, start_col)
            VALUES (?,?,?,?,?,?,?,?)`,
			gameID, i, c.ID, c.Text, c.Answer, string(c.Direction), c.StartRow, c.StartCol); err != nil {
			return fmt.Errorf("insert clue %d: %w", c.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET updated_at=? WHERE id=?`, now(), gameID); err != nil {
		return fmt.Errorf("touch game: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) ActiveGame(ctx context.Context) (*Game, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, title, created_by, grid_size, is_active, created_at, updated_at
        FROM games
        WHERE is_active=1
        ORDER BY created_at DESC
        LIMIT 1`)
	return scanGame(row)
}

func (s *SQLite) GetGame(ctx context.Context, gameID string) (*Game, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, title, created_by, grid_size, is_active, created_at, updated_at
        FROM games
        WHERE id=?`, gameID)
	return scanGame(row)
}

func (s *SQLite) ListGames(ctx context.Context) ([]*Game, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, title, created_by, grid_size, is_active, created_at, updated_at
        FROM games
        ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Game
	for rows.Next() {
		var g Game
		var active int
		var created, updated string
		if err := rows.Scan(&g.ID, &g.Title, &g.CreatedBy, &g.GridSize, &active, &created, &updated); err != nil {
			return nil, err
		}
		g.IsActive = active == 1
		g.CreatedAt = mustParse(created)
		g.UpdatedAt = mustParse(updated)
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (s *SQLite) SetActive(ctx context.Context, gameID string) error {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `UPDATE games SET is_active=0`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET is_active=1, updated_at=? WHERE id=?`, now(), gameID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Scores(ctx context.Context, gameID string) ([]PlayerScore, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT ps.user_id, COALESCE(u.username, ps.user_id), ps.score, ps.correct_answers,
               ps.is_completed, ps.completion_secs, ps.updated_at
        FROM player_scores ps
        LEFT JOIN users u ON u.id = ps.user_id
        WHERE ps.game_id=?
        ORDER BY ps.score DESC, ps.completion_secs ASC, ps.updated_at ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerScore
	for rows.Next() {
		var r PlayerScore
		var done int
		var updated string
		if err := rows.Scan(&r.UserID, &r.Username, &r.Score, &r.CorrectAnswers, &done, &r.CompletionSecs, &updated); err != nil {
			return nil, err
		}
		r.GameID = gameID
		r.IsCompleted = done == 1
		r.UpdatedAt = mustParse(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanGame converts a single-row query into a *Game, mapping
// sql.ErrNoRows to ErrNotFound.
func scanGame(row *sql.Row) (*Game, error) {
	var g Game
	var active int
	var created, updated string
	if err := row.Scan(&g.ID, &g.Title, &g.CreatedBy, &g.GridSize, &active, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	g.IsActive = active == 1
	g.CreatedAt = mustParse(created)
	g.UpdatedAt = mustParse(updated)
	return &g, nil
}

// now returns the canonical timestamp format used in the DB.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
