// internal/crossword/types.go
//
// Core type definitions for the crossword engine.
// Defines:
//   - Direction: orientation of a clue on the grid.
//   - Clue: an authored entry (prompt, answer, placement).
//   - Grid: the derived letter/blocked matrix.
//   - Answers: per-cell player input state.
//   - State: derived completion/score snapshot.

package crossword

import "fmt"

// Direction is the orientation of a clue's answer on the grid.
// Possible values:
//   - "horizontal": letters run left to right from the start cell.
//   - "vertical":   letters run top to bottom from the start cell.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == Horizontal || d == Vertical
}

// Clue is a single authored crossword entry. Clues are immutable during
// play; the admin layer owns their lifecycle.
type Clue struct {
	ID        int       `json:"id"`       // Unique within a game.
	Text      string    `json:"clue"`     // Natural-language prompt.
	Answer    string    `json:"answer"`   // Uppercase solution, 1..N letters.
	Direction Direction `json:"direction"`
	StartRow  int       `json:"startRow"` // Zero-based row of the first letter.
	StartCol  int       `json:"startCol"` // Zero-based column of the first letter.
	Number    int       `json:"number"`   // Authored display number; on-grid numbering ignores it.
}

// Cell returns the coordinates of the i-th letter of the clue.
func (c Clue) Cell(i int) (row, col int) {
	if c.Direction == Vertical {
		return c.StartRow + i, c.StartCol
	}
	return c.StartRow, c.StartCol + i
}

// Len returns the answer length in bytes. Answers are ASCII uppercase,
// so this equals the letter count.
func (c Clue) Len() int { return len(c.Answer) }

// Grid is a rows×cols matrix derived from a clue list. A cell holds the
// single uppercase letter expected there, or Blocked if no clue covers it.
// The grid has no independent lifecycle; it is recomputed whenever the
// clue list changes.
type Grid [][]string

// Blocked marks a cell no clue covers. Blocked cells are unusable.
const Blocked = ""

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns (0 for an empty grid).
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// In reports whether (row, col) lies within the grid bounds.
func (g Grid) In(row, col int) bool {
	return row >= 0 && row < g.Rows() && col >= 0 && col < g.Cols()
}

// BlockedAt reports whether the cell is out of bounds or blocked.
func (g Grid) BlockedAt(row, col int) bool {
	return !g.In(row, col) || g[row][col] == Blocked
}

// Answers maps a cell key ("row-col") to the single character the player
// typed there. An absent or empty entry means "not yet filled". This is
// the only mutable play-time state.
type Answers map[string]string

// CellKey builds the canonical map key for a cell.
func CellKey(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// Clone returns a shallow copy, safe to hand to a concurrent writer.
func (a Answers) Clone() Answers {
	cp := make(Answers, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// State is the derived completion snapshot. It is pure derived data,
// recomputed from the clue list plus Answers; never mutated directly.
type State struct {
	Completed []int `json:"completedClueIds"` // IDs of fully correct clues, authored order.
	Score     int   `json:"score"`            // round(completed/total * 1000).
	Done      bool  `json:"isCompleted"`      // Every clue completed.
}

// CompletedSet returns the completed IDs as a set for diffing.
func (s State) CompletedSet() map[int]bool {
	set := make(map[int]bool, len(s.Completed))
	for _, id := range s.Completed {
		set[id] = true
	}
	return set
}
