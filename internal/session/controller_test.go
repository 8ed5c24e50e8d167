package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tekateki/go-server/internal/crossword"
)

type savedCall struct {
	answers   crossword.Answers
	score     int
	completed int
}

// fakeStore records persistence calls and can simulate failures.
type fakeStore struct {
	mu sync.Mutex

	clues       []crossword.Clue
	cluesErr    error
	progress    crossword.Answers
	progressErr error
	saveFails   int // fail this many SaveProgress calls, then succeed

	saved      []savedCall
	increments []int // points per IncrementScore call
	markedSecs []int // elapsedSeconds per MarkCompleted call
}

func (f *fakeStore) LoadClues(ctx context.Context, gameID string) ([]crossword.Clue, error) {
	if f.cluesErr != nil {
		return nil, f.cluesErr
	}
	return f.clues, nil
}

func (f *fakeStore) LoadProgress(ctx context.Context, userID, gameID string) (crossword.Answers, error) {
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	if f.progress == nil {
		return crossword.Answers{}, nil
	}
	return f.progress.Clone(), nil
}

func (f *fakeStore) SaveProgress(ctx context.Context, userID, gameID string, answers crossword.Answers, score, completed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveFails > 0 {
		f.saveFails--
		return errors.New("save failed")
	}
	f.saved = append(f.saved, savedCall{answers: answers.Clone(), score: score, completed: completed})
	return nil
}

func (f *fakeStore) IncrementScore(ctx context.Context, userID, gameID string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments = append(f.increments, points)
	return nil
}

func (f *fakeStore) MarkCompleted(ctx context.Context, userID, gameID string, elapsedSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedSecs = append(f.markedSecs, elapsedSeconds)
	return nil
}

func (f *fakeStore) counts() (saves, incs, marks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved), len(f.increments), len(f.markedSecs)
}

// testClues: SAPI horizontal at (1,0) and TEH vertical at (0,4),
// crossing nowhere, on a 5x5 grid.
func testClues() []crossword.Clue {
	return []crossword.Clue{
		{ID: 1, Answer: "SAPI", Direction: crossword.Horizontal, StartRow: 1, StartCol: 0},
		{ID: 2, Answer: "TEH", Direction: crossword.Vertical, StartRow: 0, StartCol: 4},
	}
}

func newTestController(t *testing.T, st Store, delay time.Duration) *Controller {
	t.Helper()
	c := New("user1", "game1", st, Config{SaveDelay: delay})
	if err := c.Start(context.Background(), 5, 5); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c
}

func typeWord(t *testing.T, c *Controller, clue crossword.Clue, word string) {
	t.Helper()
	for i := 0; i < len(word); i++ {
		row, col := clue.Cell(i)
		if _, err := c.Input(context.Background(), row, col, string(word[i])); err != nil {
			t.Fatalf("Input(%d,%d): %v", row, col, err)
		}
	}
}

func TestStartCluesFailureIsHard(t *testing.T) {
	st := &fakeStore{cluesErr: errors.New("db down")}
	c := New("user1", "game1", st, Config{})
	if err := c.Start(context.Background(), 5, 5); err == nil {
		t.Fatal("expected Start to fail when clues cannot be loaded")
	}
}

func TestStartProgressFailureFailsOpen(t *testing.T) {
	st := &fakeStore{clues: testClues(), progressErr: errors.New("db down")}
	c := New("user1", "game1", st, Config{SaveDelay: 10 * time.Millisecond})
	if err := c.Start(context.Background(), 5, 5); err != nil {
		t.Fatalf("progress failure must not block Start: %v", err)
	}
	if st := c.State(); len(st.Completed) != 0 || st.Score != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestRestoredProgressDoesNotRefireSideEffects(t *testing.T) {
	clues := testClues()
	progress := crossword.Answers{}
	for _, cl := range clues {
		for i := 0; i < cl.Len(); i++ {
			r, c := cl.Cell(i)
			progress[crossword.CellKey(r, c)] = string(cl.Answer[i])
		}
	}
	st := &fakeStore{clues: clues, progress: progress}
	c := newTestController(t, st, 10*time.Millisecond)

	if got := c.State(); !got.Done || got.Score != 1000 {
		t.Fatalf("restored state should be done with 1000, got %+v", got)
	}
	if _, incs, marks := st.counts(); incs != 0 || marks != 0 {
		t.Fatalf("restoring finished progress must not fire side effects, got incs=%d marks=%d", incs, marks)
	}
}

func TestIncrementOncePerTransition(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour) // saves never fire in this test

	typeWord(t, c, testClues()[0], "SAPI")
	if _, incs, _ := st.counts(); incs != 1 {
		t.Fatalf("expected 1 increment after completing SAPI, got %d", incs)
	}

	// Re-typing the same final letter is not a new transition.
	if _, err := c.Input(context.Background(), 1, 3, "I"); err != nil {
		t.Fatal(err)
	}
	if _, incs, _ := st.counts(); incs != 1 {
		t.Fatalf("retype must not re-increment, got %d", incs)
	}

	// Un-fill and refill: a genuine new transition, increments again.
	if _, err := c.Input(context.Background(), 1, 3, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Input(context.Background(), 1, 3, "I"); err != nil {
		t.Fatal(err)
	}
	if _, incs, _ := st.counts(); incs != 2 {
		t.Fatalf("refill after clear should increment again, got %d", incs)
	}
}

func TestMarkCompletedExactlyOnce(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)

	typeWord(t, c, testClues()[0], "SAPI")
	typeWord(t, c, testClues()[1], "TEH")

	if got := c.State(); !got.Done {
		t.Fatalf("expected done, got %+v", got)
	}
	if _, _, marks := st.counts(); marks != 1 {
		t.Fatalf("expected exactly one MarkCompleted, got %d", marks)
	}

	// More edits after completion never re-signal.
	if _, err := c.Input(context.Background(), 0, 4, "T"); err != nil {
		t.Fatal(err)
	}
	if _, _, marks := st.counts(); marks != 1 {
		t.Fatalf("completion must be idempotent, got %d marks", marks)
	}
}

func TestCrossingCluesFullSolve(t *testing.T) {
	// SAPI horizontal and API vertical cross at (1,2) and agree on P.
	// Typing the second word over the shared cell must not un-complete
	// the first; the session ends done with both side effects fired.
	clues := []crossword.Clue{
		{ID: 1, Answer: "SAPI", Direction: crossword.Horizontal, StartRow: 1, StartCol: 0},
		{ID: 2, Answer: "API", Direction: crossword.Vertical, StartRow: 0, StartCol: 2},
	}
	st := &fakeStore{clues: clues}
	c := newTestController(t, st, time.Hour)

	typeWord(t, c, clues[0], "SAPI")
	typeWord(t, c, clues[1], "API")

	got := c.State()
	if !got.Done || got.Score != 1000 || len(got.Completed) != 2 {
		t.Fatalf("expected full solve, got %+v", got)
	}
	if _, incs, marks := st.counts(); incs != 2 || marks != 1 {
		t.Fatalf("expected 2 increments and 1 completion, got incs=%d marks=%d", incs, marks)
	}
}

func TestLowercaseInputCompletes(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)

	typeWord(t, c, testClues()[0], "sapi")
	if got := c.State(); len(got.Completed) != 1 || got.Completed[0] != 1 {
		t.Fatalf("lowercase entry should complete the clue, got %+v", got)
	}
}

func TestDebounceCoalescesSaves(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, 30*time.Millisecond)

	// Three rapid edits inside one quiet period → a single save carrying
	// the latest snapshot.
	typeWord(t, c, testClues()[0], "SAP")
	time.Sleep(150 * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.saved) != 1 {
		t.Fatalf("expected 1 coalesced save, got %d", len(st.saved))
	}
	got := st.saved[0].answers
	for i, want := range []string{"S", "A", "P"} {
		if got[crossword.CellKey(1, i)] != want {
			t.Fatalf("saved snapshot missing letter %d: %v", i, got)
		}
	}
}

func TestSaveFailureRetriesOnNextFire(t *testing.T) {
	st := &fakeStore{clues: testClues(), saveFails: 1}
	c := newTestController(t, st, 20*time.Millisecond)

	if _, err := c.Input(context.Background(), 1, 0, "S"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond) // first save fires and fails

	if saves, _, _ := st.counts(); saves != 0 {
		t.Fatalf("first save should have failed, got %d successes", saves)
	}

	// The next edit reschedules; that fire succeeds with all edits.
	if _, err := c.Input(context.Background(), 1, 1, "A"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.saved) != 1 {
		t.Fatalf("expected retried save to land once, got %d", len(st.saved))
	}
	if st.saved[0].answers[crossword.CellKey(1, 0)] != "S" {
		t.Fatal("retried save lost the earlier edit")
	}
}

func TestFlushSavesImmediately(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)

	if _, err := c.Input(context.Background(), 1, 0, "S"); err != nil {
		t.Fatal(err)
	}
	c.Flush(context.Background())
	if saves, _, _ := st.counts(); saves != 1 {
		t.Fatalf("expected Flush to persist, got %d saves", saves)
	}

	// Nothing dirty: Flush is a no-op.
	c.Flush(context.Background())
	if saves, _, _ := st.counts(); saves != 1 {
		t.Fatalf("clean Flush should not save again, got %d", saves)
	}
}

func TestClickSelection(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)

	// Blocked cell: no-op.
	if clue := c.Click(4, 4); clue != nil {
		t.Fatal("clicking a blocked cell should select nothing")
	}
	// Letter cell: first intersecting clue becomes active.
	clue := c.Click(1, 0)
	if clue == nil || clue.ID != 1 {
		t.Fatalf("expected clue 1 active, got %+v", clue)
	}
	// An already-correct cell is a no-op.
	if _, err := c.Input(context.Background(), 0, 4, "T"); err != nil {
		t.Fatal(err)
	}
	if clue := c.Click(0, 4); clue != nil {
		t.Fatal("clicking a solved cell should be a no-op")
	}
}

func TestInputBlockedCell(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)

	if _, err := c.Input(context.Background(), 4, 4, "X"); !errors.Is(err, ErrBlockedCell) {
		t.Fatalf("expected ErrBlockedCell, got %v", err)
	}
}

func TestFocusAdvancesAndSkipsCorrect(t *testing.T) {
	clues := []crossword.Clue{{ID: 1, Answer: "ABC", Direction: crossword.Horizontal, StartRow: 0, StartCol: 0}}
	st := &fakeStore{clues: clues}
	c := newTestController(t, st, time.Hour)
	c.Click(0, 0)

	// Pre-solve the middle cell; typing at (0,0) must land focus on (0,2).
	if _, err := c.Input(context.Background(), 0, 1, "B"); err != nil {
		t.Fatal(err)
	}
	res, err := c.Input(context.Background(), 0, 0, "A")
	if err != nil {
		t.Fatal(err)
	}
	if res.Focus == nil || res.Focus.Row != 0 || res.Focus.Col != 2 {
		t.Fatalf("expected focus (0,2), got %+v", res.Focus)
	}
}

func TestClearNeverAdvances(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)
	c.Click(1, 0)

	if _, err := c.Input(context.Background(), 1, 0, "S"); err != nil {
		t.Fatal(err)
	}
	res, err := c.Input(context.Background(), 1, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Focus != nil {
		t.Fatalf("explicit clear must keep focus in place, got %+v", res.Focus)
	}
}

func TestBackspace(t *testing.T) {
	st := &fakeStore{clues: testClues()}
	c := newTestController(t, st, time.Hour)
	c.Click(1, 0)

	// Filled cell: Backspace clears in place.
	if _, err := c.Input(context.Background(), 1, 1, "A"); err != nil {
		t.Fatal(err)
	}
	res, err := c.Backspace(context.Background(), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Focus != nil {
		t.Fatalf("clearing a filled cell should not move focus, got %+v", res.Focus)
	}
	_, _, answers, _ := c.Snapshot()
	if answers[crossword.CellKey(1, 1)] != "" {
		t.Fatal("expected cell cleared")
	}

	// Empty cell: Backspace steps backward within the clue.
	res, err = c.Backspace(context.Background(), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Focus == nil || res.Focus.Row != 1 || res.Focus.Col != 0 {
		t.Fatalf("expected focus (1,0), got %+v", res.Focus)
	}

	// At the first letter there is nowhere to go.
	res, err = c.Backspace(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Focus != nil {
		t.Fatalf("expected no backward focus at word start, got %+v", res.Focus)
	}
}
