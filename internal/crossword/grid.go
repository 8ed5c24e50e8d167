// internal/crossword/grid.go
//
// Grid projection: derives the letter grid from a positioned clue list.
// Pure and deterministic; safe to call on every clue-list change.

package crossword

import "strings"

// Project builds a rows×cols Grid from the clue list.
//
// Every cell starts Blocked. For each clue, each letter is written at
// its span cell in authored clue order; a later clue overwrites an
// earlier one on a shared cell (well-formed input never disagrees, so
// the order is unobservable in practice). Letters that would land
// outside the grid are dropped silently — authoring tools allow
// provisional invalid placements while editing, and play must stay
// non-fatal.
func Project(clues []Clue, rows, cols int) Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	g := make(Grid, rows)
	for r := range g {
		g[r] = make([]string, cols)
	}

	for _, c := range clues {
		answer := strings.ToUpper(c.Answer)
		for i := 0; i < len(answer); i++ {
			row, col := c.Cell(i)
			if !g.In(row, col) {
				continue
			}
			g[row][col] = string(answer[i])
		}
	}
	return g
}
