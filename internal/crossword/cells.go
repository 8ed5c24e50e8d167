// internal/crossword/cells.go
//
// Cell classification: numbering, active-word membership, per-cell
// correctness, and clue intersection lookups. All functions are
// stateless; the rendering/session layer calls them as needed.

package crossword

import "strings"

// NumberAt reports whether any clue starts exactly at (row, col) and, if
// so, the number to display there. Co-located clues (a horizontal and a
// vertical sharing an origin) share one number: the 1-based position of
// the first such clue in authored order. The clue's own Number field is
// ignored so the grid always shows sequential numbering without
// authored gaps.
func NumberAt(clues []Clue, row, col int) (int, bool) {
	for i, c := range clues {
		if c.StartRow == row && c.StartCol == col {
			return i + 1, true
		}
	}
	return 0, false
}

// InClue reports whether the clue's span covers (row, col).
func InClue(c Clue, row, col int) bool {
	if c.Direction == Horizontal {
		return row == c.StartRow && col >= c.StartCol && col < c.StartCol+c.Len()
	}
	return col == c.StartCol && row >= c.StartRow && row < c.StartRow+c.Len()
}

// IntersectingClues returns all clues whose span covers the cell, in
// authored order. On a cell click the first match becomes the active
// clue.
func IntersectingClues(clues []Clue, row, col int) []Clue {
	var out []Clue
	for _, c := range clues {
		if InClue(c, row, col) {
			out = append(out, c)
		}
	}
	return out
}

// CellCorrect reports whether the player's entry at (row, col) is
// non-empty and matches, case-insensitively, the expected letter of any
// clue covering the cell. At an intersection the crossing clues agree on
// the letter by the authoring invariant, so matching either suffices.
func CellCorrect(clues []Clue, answers Answers, row, col int) bool {
	got := answers[CellKey(row, col)]
	if got == "" {
		return false
	}
	for _, c := range clues {
		if !InClue(c, row, col) {
			continue
		}
		var i int
		if c.Direction == Horizontal {
			i = col - c.StartCol
		} else {
			i = row - c.StartRow
		}
		if strings.EqualFold(got, string(c.Answer[i])) {
			return true
		}
	}
	return false
}
