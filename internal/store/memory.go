// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used in tests and in
// development setups where durability is not required.
//
// Characteristics:
//   - Games, clues, and scores live in maps keyed by game ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing game IDs.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tekateki/go-server/internal/crossword"
)

// Memory is a map-based Store implementation.
type Memory struct {
	mu     sync.RWMutex
	games  map[string]*Game
	clues  map[string][]crossword.Clue        // game ID → authored clue list
	scores map[string]map[string]*PlayerScore // game ID → user ID → score row
	saved  map[string]map[string]crossword.Answers
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		games:  make(map[string]*Game),
		clues:  make(map[string][]crossword.Clue),
		scores: make(map[string]map[string]*PlayerScore),
		saved:  make(map[string]map[string]crossword.Answers),
	}
}

func (m *Memory) LoadClues(ctx context.Context, gameID string) ([]crossword.Clue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.games[gameID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]crossword.Clue, len(m.clues[gameID]))
	copy(out, m.clues[gameID])
	return out, nil
}

func (m *Memory) LoadProgress(ctx context.Context, userID, gameID string) (crossword.Answers, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if byUser, ok := m.saved[gameID]; ok {
		if a, ok := byUser[userID]; ok {
			return a.Clone(), nil
		}
	}
	return crossword.Answers{}, nil
}

func (m *Memory) SaveProgress(ctx context.Context, userID, gameID string, answers crossword.Answers, score, completed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved[gameID] == nil {
		m.saved[gameID] = make(map[string]crossword.Answers)
	}
	m.saved[gameID][userID] = answers.Clone()
	row := m.scoreRowLocked(userID, gameID)
	row.Score = score
	row.CorrectAnswers = completed
	row.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) IncrementScore(ctx context.Context, userID, gameID string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.scoreRowLocked(userID, gameID)
	row.Score += points
	row.CorrectAnswers++
	row.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) MarkCompleted(ctx context.Context, userID, gameID string, elapsedSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.scoreRowLocked(userID, gameID)
	row.IsCompleted = true
	row.CompletionSecs = elapsedSeconds
	row.UpdatedAt = time.Now()
	return nil
}

// scoreRowLocked returns the player's score row, creating it if needed.
// Caller must hold the write lock.
func (m *Memory) scoreRowLocked(userID, gameID string) *PlayerScore {
	if m.scores[gameID] == nil {
		m.scores[gameID] = make(map[string]*PlayerScore)
	}
	row, ok := m.scores[gameID][userID]
	if !ok {
		row = &PlayerScore{UserID: userID, Username: userID, GameID: gameID}
		m.scores[gameID][userID] = row
	}
	return row
}

func (m *Memory) CreateGame(ctx context.Context, title, createdBy string, gridSize int) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		g.IsActive = false
	}
	g := &Game{
		ID:        newID(),
		Title:     title,
		CreatedBy: createdBy,
		GridSize:  gridSize,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *Memory) ReplaceClues(ctx context.Context, gameID string, clues []crossword.Clue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	cp := make([]crossword.Clue, len(clues))
	copy(cp, clues)
	m.clues[gameID] = cp
	g.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ActiveGame(ctx context.Context) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Game
	for _, g := range m.games {
		if !g.IsActive {
			continue
		}
		if best == nil || g.CreatedAt.After(best.CreatedAt) {
			best = g
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *Memory) GetGame(ctx context.Context, gameID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *Memory) ListGames(ctx context.Context) ([]*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		cp := *g
		list = append(list, &cp)
	}
	// Most recent first.
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (m *Memory) SetActive(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	for _, g := range m.games {
		g.IsActive = false
	}
	target.IsActive = true
	target.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) Scores(ctx context.Context, gameID string) ([]PlayerScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []PlayerScore
	for _, row := range m.scores[gameID] {
		out = append(out, *row)
	}
	// Best first: highest score, then fastest completion.
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out, nil
}

func better(a, b PlayerScore) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.CompletionSecs < b.CompletionSecs
}
