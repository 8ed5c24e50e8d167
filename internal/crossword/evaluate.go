// internal/crossword/evaluate.go
//
// Completion evaluation: which clues are fully and correctly filled,
// the current score, and whether the game is done. Recomputed from
// scratch after every single-character change; it is cheap at crossword
// sizes and keeps the derivation trivially correct.

package crossword

import (
	"math"
	"strings"
)

// Evaluate walks every clue against the current answers and returns the
// derived game state.
//
// A clue is complete iff every constituent cell's entry matches the
// expected letter case-insensitively; one mismatch or missing entry
// disqualifies the whole clue. The score is round(completed/total*1000),
// 0 for a zero-clue game. A zero-clue game is reported Done: there is
// nothing left to fill, and the division-safe rule keeps the two
// degenerate answers consistent.
func Evaluate(clues []Clue, answers Answers) State {
	completed := []int{}
	for _, c := range clues {
		if clueComplete(c, answers) {
			completed = append(completed, c.ID)
		}
	}

	score := 0
	if len(clues) > 0 {
		score = int(math.Round(float64(len(completed)) / float64(len(clues)) * 1000))
	}

	return State{
		Completed: completed,
		Score:     score,
		Done:      len(completed) == len(clues),
	}
}

// clueComplete checks every cell of a single clue.
func clueComplete(c Clue, answers Answers) bool {
	for i := 0; i < c.Len(); i++ {
		row, col := c.Cell(i)
		got := answers[CellKey(row, col)]
		if got == "" || !strings.EqualFold(got, string(c.Answer[i])) {
			return false
		}
	}
	return true
}
