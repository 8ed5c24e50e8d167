package crossword

import "testing"

func TestNumberAt(t *testing.T) {
	clues := sampleClues()

	tests := []struct {
		row, col int
		number   int
		numbered bool
	}{
		{1, 0, 1, true},  // SAPI starts here
		{0, 5, 2, true},  // TEH
		{3, 3, 3, true},  // BUMI
		{0, 1, 4, true},  // MAWAR: 4th in authored order despite Number field 1
		{8, 0, 5, true},  // PENA
		{1, 2, 0, false}, // mid-word, not a start
		{9, 9, 0, false}, // blocked
	}
	for _, tt := range tests {
		n, ok := NumberAt(clues, tt.row, tt.col)
		if ok != tt.numbered || n != tt.number {
			t.Errorf("NumberAt(%d,%d): expected (%d,%v), got (%d,%v)", tt.row, tt.col, tt.number, tt.numbered, n, ok)
		}
	}
}

func TestNumberSharedByCoLocatedClues(t *testing.T) {
	clues := []Clue{
		{ID: 10, Answer: "AB", Direction: Horizontal, StartRow: 0, StartCol: 0},
		{ID: 20, Answer: "AC", Direction: Vertical, StartRow: 0, StartCol: 0},
		{ID: 30, Answer: "CD", Direction: Horizontal, StartRow: 1, StartCol: 0},
	}
	n, ok := NumberAt(clues, 0, 0)
	if !ok || n != 1 {
		t.Fatalf("co-located clues should share number 1, got (%d,%v)", n, ok)
	}
	// The vertical clue does not claim a second number anywhere.
	if n, ok := NumberAt(clues, 1, 0); !ok || n != 3 {
		t.Fatalf("expected third clue numbered 3, got (%d,%v)", n, ok)
	}
}

func TestInClue(t *testing.T) {
	h := Clue{Answer: "SAPI", Direction: Horizontal, StartRow: 2, StartCol: 1}
	v := Clue{Answer: "BUMI", Direction: Vertical, StartRow: 1, StartCol: 3}

	if !InClue(h, 2, 1) || !InClue(h, 2, 4) {
		t.Fatal("horizontal span endpoints should be covered")
	}
	if InClue(h, 2, 5) || InClue(h, 3, 1) {
		t.Fatal("cells outside the horizontal span should not be covered")
	}
	if !InClue(v, 1, 3) || !InClue(v, 4, 3) {
		t.Fatal("vertical span endpoints should be covered")
	}
	if InClue(v, 5, 3) || InClue(v, 1, 4) {
		t.Fatal("cells outside the vertical span should not be covered")
	}
}

func TestIntersectingClues(t *testing.T) {
	clues := sampleClues()

	// (1,1) is shared by SAPI (horizontal) and MAWAR (vertical);
	// authored order puts SAPI first.
	got := IntersectingClues(clues, 1, 1)
	if len(got) != 2 {
		t.Fatalf("expected 2 intersecting clues, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 4 {
		t.Fatalf("expected authored order [1 4], got [%d %d]", got[0].ID, got[1].ID)
	}

	if got := IntersectingClues(clues, 9, 9); len(got) != 0 {
		t.Fatalf("blocked cell should intersect nothing, got %d clues", len(got))
	}
}

func TestCellCorrect(t *testing.T) {
	clues := sampleClues()

	answers := Answers{
		CellKey(1, 0): "S",
		CellKey(1, 1): "a", // lowercase entry for expected A
		CellKey(1, 2): "X", // wrong letter
	}

	if !CellCorrect(clues, answers, 1, 0) {
		t.Fatal("exact match should be correct")
	}
	if !CellCorrect(clues, answers, 1, 1) {
		t.Fatal("case-insensitive match should be correct")
	}
	if CellCorrect(clues, answers, 1, 2) {
		t.Fatal("wrong letter should not be correct")
	}
	if CellCorrect(clues, answers, 1, 3) {
		t.Fatal("unfilled cell should not be correct")
	}
	if CellCorrect(clues, answers, 9, 9) {
		t.Fatal("cell outside every clue should not be correct")
	}
}

func TestCellCorrectAtIntersection(t *testing.T) {
	// Two clues sharing cell (2,2) and agreeing on the letter A.
	clues := []Clue{
		{ID: 1, Answer: "BA", Direction: Horizontal, StartRow: 2, StartCol: 1},
		{ID: 2, Answer: "AC", Direction: Vertical, StartRow: 2, StartCol: 2},
	}
	answers := Answers{CellKey(2, 2): "A"}

	// The shared cell is correct regardless of which clue's flow filled it,
	// and it counts for both clues' evaluation.
	if !CellCorrect(clues, answers, 2, 2) {
		t.Fatal("intersection cell should be correct for both clues")
	}
	answers[CellKey(2, 1)] = "B"
	st := Evaluate(clues, answers)
	if len(st.Completed) != 1 || st.Completed[0] != 1 {
		t.Fatalf("horizontal clue should be complete via the shared cell, got %v", st.Completed)
	}
}
