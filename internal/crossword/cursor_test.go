package crossword

import "testing"

func TestNextCellSkipsCorrect(t *testing.T) {
	// Clue ABC horizontal at row 0; (0,1) is already correct, so typing
	// into (0,0) must advance focus to (0,2).
	clue := Clue{ID: 1, Answer: "ABC", Direction: Horizontal, StartRow: 0, StartCol: 0}
	g := Project([]Clue{clue}, 1, 3)
	correct := func(row, col int) bool { return row == 0 && col == 1 }

	row, col, ok := NextCell(clue, 0, 0, g, correct)
	if !ok || row != 0 || col != 2 {
		t.Fatalf("expected focus (0,2), got (%d,%d) ok=%v", row, col, ok)
	}
}

func TestNextCellEndOfWord(t *testing.T) {
	clue := Clue{ID: 1, Answer: "ABC", Direction: Horizontal, StartRow: 0, StartCol: 0}
	g := Project([]Clue{clue}, 1, 3)

	if _, _, ok := NextCell(clue, 0, 2, g, nil); ok {
		t.Fatal("no cell should follow the last letter")
	}

	// All remaining cells correct → stay put.
	allCorrect := func(int, int) bool { return true }
	if _, _, ok := NextCell(clue, 0, 0, g, allCorrect); ok {
		t.Fatal("expected no focus target when the rest of the word is solved")
	}
}

func TestNextCellVertical(t *testing.T) {
	clue := Clue{ID: 1, Answer: "BUMI", Direction: Vertical, StartRow: 1, StartCol: 3}
	g := Project([]Clue{clue}, 6, 6)

	row, col, ok := NextCell(clue, 1, 3, g, nil)
	if !ok || row != 2 || col != 3 {
		t.Fatalf("expected focus (2,3), got (%d,%d) ok=%v", row, col, ok)
	}
}

func TestPrevCell(t *testing.T) {
	clue := Clue{ID: 1, Answer: "ABC", Direction: Horizontal, StartRow: 0, StartCol: 1}
	g := Project([]Clue{clue}, 1, 4)

	row, col, ok := PrevCell(clue, 0, 2, g)
	if !ok || row != 0 || col != 1 {
		t.Fatalf("expected focus (0,1), got (%d,%d) ok=%v", row, col, ok)
	}

	// At the first letter there is nowhere to go back to.
	if _, _, ok := PrevCell(clue, 0, 1, g); ok {
		t.Fatal("expected no backward cell at the start of the word")
	}
}

func TestPrevCellDoesNotSkipCorrect(t *testing.T) {
	// deliberate asymmetry with NextCell: backing up lands on solved
	// cells so the player can see where they are.
	clue := Clue{ID: 1, Answer: "BUMI", Direction: Vertical, StartRow: 0, StartCol: 0}
	g := Project([]Clue{clue}, 4, 1)

	row, col, ok := PrevCell(clue, 2, 0, g)
	if !ok || row != 1 || col != 0 {
		t.Fatalf("expected focus (1,0), got (%d,%d) ok=%v", row, col, ok)
	}
}
