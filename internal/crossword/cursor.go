// internal/crossword/cursor.go
//
// Cursor navigation within the active clue: where focus should land
// after a letter is typed (auto-advance) or after Backspace on an
// already-empty cell.

package crossword

// NextCell returns the cell focus should move to after filling
// (fromRow, fromCol) within the clue. It scans forward along the clue's
// span, skipping blocked cells and cells that are already correct per
// the given predicate, so the player never re-types solved letters.
// ok is false when no cell remains (end of word — focus stays put).
func NextCell(c Clue, fromRow, fromCol int, g Grid, correct func(row, col int) bool) (row, col int, ok bool) {
	var from int
	if c.Direction == Horizontal {
		from = fromCol - c.StartCol
	} else {
		from = fromRow - c.StartRow
	}
	for i := from + 1; i < c.Len(); i++ {
		r, cl := c.Cell(i)
		if g.BlockedAt(r, cl) {
			continue
		}
		if correct != nil && correct(r, cl) {
			continue
		}
		return r, cl, true
	}
	return 0, 0, false
}

// PrevCell returns the cell focus should move to on Backspace when the
// current cell is already empty: one step backward within the clue's
// span. Backward movement does not skip already-correct cells — only
// the forward scan does. ok is false at the start of the word or when
// the backward cell is blocked.
func PrevCell(c Clue, fromRow, fromCol int, g Grid) (row, col int, ok bool) {
	var from int
	if c.Direction == Horizontal {
		from = fromCol - c.StartCol
	} else {
		from = fromRow - c.StartRow
	}
	if from <= 0 {
		return 0, 0, false
	}
	r, cl := c.Cell(from - 1)
	if g.BlockedAt(r, cl) {
		return 0, 0, false
	}
	return r, cl, true
}
