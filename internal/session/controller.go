// internal/session/controller.go
//
// Game session controller: orchestrates the crossword engine against a
// live input model for one (user, game) pair. Owns the only mutable
// play-time state (the player's answers), re-derives completion after
// every input, coalesces persistence writes through a trailing-edge
// debouncer, and fires score side effects exactly once per transition.
//
// The player's local view is authoritative: persistence failures are
// logged and retried on the next debounce fire, never surfaced as
// gameplay errors and never rolled back.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tekateki/go-server/internal/crossword"
)

// CluePoints is awarded once each time a clue transitions into complete.
const CluePoints = 10

// DefaultSaveDelay is the auto-save quiet period.
const DefaultSaveDelay = 2 * time.Second

// saveTimeout bounds the background persistence write.
const saveTimeout = 5 * time.Second

// ErrBlockedCell is returned for input aimed at a blocked or
// out-of-bounds cell.
var ErrBlockedCell = errors.New("cell is blocked")

// Store is the slice of the persistence collaborator the controller
// needs (a subset of store.Store).
type Store interface {
	LoadClues(ctx context.Context, gameID string) ([]crossword.Clue, error)
	LoadProgress(ctx context.Context, userID, gameID string) (crossword.Answers, error)
	SaveProgress(ctx context.Context, userID, gameID string, answers crossword.Answers, score, completed int) error
	IncrementScore(ctx context.Context, userID, gameID string, points int) error
	MarkCompleted(ctx context.Context, userID, gameID string, elapsedSeconds int) error
}

// Cell is a grid coordinate handed back as a focus target.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InputResult is what a single cell edit produces.
type InputResult struct {
	State          crossword.State `json:"state"`
	NewlyCompleted []int           `json:"newlyCompleted"` // clue IDs that just transitioned into complete
	Focus          *Cell           `json:"focus,omitempty"` // next cell to focus, nil = stay put
}

// Config tunes a controller. Zero values fall back to defaults.
type Config struct {
	SaveDelay time.Duration
	Logger    zerolog.Logger
}

// Controller drives one player's session on one game.
type Controller struct {
	userID string
	gameID string
	store  Store
	log    zerolog.Logger
	saver  *Debouncer

	mu       sync.Mutex
	clues    []crossword.Clue
	grid     crossword.Grid
	answers  crossword.Answers
	state    crossword.State
	active   *crossword.Clue
	started  time.Time
	signaled bool // MarkCompleted already sent
	dirty    bool // unsaved local edits exist
}

// New constructs a controller; call Start before anything else.
func New(userID, gameID string, st Store, cfg Config) *Controller {
	delay := cfg.SaveDelay
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Controller{
		userID: userID,
		gameID: gameID,
		store:  st,
		log:    cfg.Logger,
		saver:  NewDebouncer(delay),
	}
}

// Start loads the clue list and any saved progress.
//
// A clue-list failure is a hard stop — there is nothing to play. A
// progress failure fails open: the game starts with empty answers and
// is simply unsaved until the next successful write. Progress restored
// from a finished session does not re-fire completion side effects.
func (c *Controller) Start(ctx context.Context, rows, cols int) error {
	clues, err := c.store.LoadClues(ctx, c.gameID)
	if err != nil {
		return fmt.Errorf("load game %s: %w", c.gameID, err)
	}

	answers, err := c.store.LoadProgress(ctx, c.userID, c.gameID)
	if err != nil {
		c.log.Warn().Err(err).Str("game", c.gameID).Msg("load progress failed, starting empty")
		answers = crossword.Answers{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clues = clues
	c.grid = crossword.Project(clues, rows, cols)
	c.answers = answers
	c.state = crossword.Evaluate(clues, answers)
	c.signaled = c.state.Done && len(clues) > 0
	c.started = time.Now()
	return nil
}

// Click selects the active clue for a cell. Blocked cells and cells
// that are already correct are no-ops (the latter keeps solved letters
// from being re-edited). Returns the newly active clue, or nil.
func (c *Controller) Click(row, col int) *crossword.Clue {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.grid.BlockedAt(row, col) {
		return nil
	}
	if crossword.CellCorrect(c.clues, c.answers, row, col) {
		return nil
	}
	hits := crossword.IntersectingClues(c.clues, row, col)
	if len(hits) == 0 {
		return nil
	}
	c.active = &hits[0]
	clue := hits[0]
	return &clue
}

// Input applies a single-character edit at (row, col). An empty value
// is an explicit clear and never advances focus. The state is
// re-evaluated synchronously; side effects fire on transitions only.
func (c *Controller) Input(ctx context.Context, row, col int, value string) (InputResult, error) {
	c.mu.Lock()

	if c.grid.BlockedAt(row, col) {
		c.mu.Unlock()
		return InputResult{}, ErrBlockedCell
	}

	value = normalize(value)
	prev := c.state.CompletedSet()

	if value == "" {
		delete(c.answers, crossword.CellKey(row, col))
	} else {
		c.answers[crossword.CellKey(row, col)] = value
	}
	c.state = crossword.Evaluate(c.clues, c.answers)
	c.dirty = true

	var newly []int
	for _, id := range c.state.Completed {
		if !prev[id] {
			newly = append(newly, id)
		}
	}

	justDone := c.state.Done && !c.signaled && len(c.clues) > 0
	if justDone {
		c.signaled = true
	}
	elapsed := int(time.Since(c.started).Seconds())

	res := InputResult{State: c.state, NewlyCompleted: newly}
	if value != "" {
		if clue := c.activeClueForLocked(row, col); clue != nil {
			correct := func(r, cl int) bool {
				return crossword.CellCorrect(c.clues, c.answers, r, cl)
			}
			if r, cl, ok := crossword.NextCell(*clue, row, col, c.grid, correct); ok {
				res.Focus = &Cell{Row: r, Col: cl}
			}
		}
	}
	c.mu.Unlock()

	// Side effects outside the lock; failures are logged, local state
	// stays authoritative.
	for _, id := range newly {
		if err := c.store.IncrementScore(ctx, c.userID, c.gameID, CluePoints); err != nil {
			c.log.Warn().Err(err).Int("clue", id).Msg("increment score failed")
		}
	}
	if justDone {
		if err := c.store.MarkCompleted(ctx, c.userID, c.gameID, elapsed); err != nil {
			c.log.Warn().Err(err).Str("game", c.gameID).Msg("mark completed failed")
		}
	}
	c.scheduleSave()

	return res, nil
}

// Backspace handles the Backspace key at (row, col): a filled cell is
// cleared in place, an empty cell moves focus one step backward within
// the active clue's span.
func (c *Controller) Backspace(ctx context.Context, row, col int) (InputResult, error) {
	c.mu.Lock()
	if c.grid.BlockedAt(row, col) {
		c.mu.Unlock()
		return InputResult{}, ErrBlockedCell
	}
	if c.answers[crossword.CellKey(row, col)] != "" {
		c.mu.Unlock()
		return c.Input(ctx, row, col, "")
	}
	res := InputResult{State: c.state}
	if clue := c.activeClueForLocked(row, col); clue != nil {
		if r, cl, ok := crossword.PrevCell(*clue, row, col, c.grid); ok {
			res.Focus = &Cell{Row: r, Col: cl}
		}
	}
	c.mu.Unlock()
	return res, nil
}

// Flush cancels any pending debounce and persists immediately. Used on
// session eviction and server shutdown.
func (c *Controller) Flush(ctx context.Context) {
	c.saver.Cancel()
	c.save(ctx)
}

// State returns the current derived snapshot.
func (c *Controller) State() crossword.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns copies of the live play state for rendering.
func (c *Controller) Snapshot() (clues []crossword.Clue, grid crossword.Grid, answers crossword.Answers, state crossword.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clues = make([]crossword.Clue, len(c.clues))
	copy(clues, c.clues)
	return clues, c.grid, c.answers.Clone(), c.state
}

// ActiveClue returns the clue last selected by Click, if any.
func (c *Controller) ActiveClue() *crossword.Clue {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	clue := *c.active
	return &clue
}

// activeClueForLocked resolves which clue governs cursor movement for a
// cell: the actively selected clue when it covers the cell, otherwise
// the first intersecting clue. Caller holds the lock.
func (c *Controller) activeClueForLocked(row, col int) *crossword.Clue {
	if c.active != nil && crossword.InClue(*c.active, row, col) {
		return c.active
	}
	if hits := crossword.IntersectingClues(c.clues, row, col); len(hits) > 0 {
		return &hits[0]
	}
	return nil
}

// scheduleSave arms the debounced auto-save. The callback snapshots at
// fire time, so the write always carries the latest answers.
func (c *Controller) scheduleSave() {
	c.saver.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		c.save(ctx)
	})
}

// save persists the current snapshot. On failure the session stays
// dirty so the next debounce fire retries.
func (c *Controller) save(ctx context.Context) {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	answers := c.answers.Clone()
	state := c.state
	c.mu.Unlock()

	if err := c.store.SaveProgress(ctx, c.userID, c.gameID, answers, state.Score, len(state.Completed)); err != nil {
		c.log.Warn().Err(err).Str("game", c.gameID).Msg("save progress failed, will retry")
		return
	}
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

// normalize reduces raw input to a single uppercase character, or ""
// for an explicit clear.
func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	r := []rune(v)
	return strings.ToUpper(string(r[0]))
}
