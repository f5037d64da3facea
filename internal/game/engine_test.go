package game

import "testing"

type recorder struct {
	words []string
	last  []bool
}

func (r *recorder) OnWordFound(_ *Session, word string, isLastWord bool) {
	r.words = append(r.words, word)
	r.last = append(r.last, isLastWord)
}

func newTestSession() *Session {
	return New("", 0, Bounds{Rows: 3, Cols: 3}, WordLocations{
		"0,0,1,0,2,0": "CAT",
		"0,0,1,1,2,2": "CUP",
	})
}

func TestSessionGesture(t *testing.T) {
	s := newTestSession()
	rec := &recorder{}
	s.Listen(rec)

	if s.ID == "" {
		t.Fatal("expected generated ID")
	}

	s.Press(Cell{0, 0})
	if got := s.Move(Cell{1, 0}); len(got) != 2 {
		t.Fatalf("expected 2 highlighted cells, got %v", got)
	}
	if got := s.Move(Cell{2, 1}); !sameSelection(got, cells(0, 0, 1, 1, 2, 2)) {
		t.Fatalf("expected diagonal highlight, got %v", got)
	}
	if s.FoundCount() != 0 {
		t.Fatal("move must not match")
	}

	res := s.Release()
	if res.Outcome != Found || res.Word != "CUP" || res.IsLastWord {
		t.Fatalf("unexpected result %+v", res)
	}
	if s.Highlighted() != nil || s.Pressing() {
		t.Fatal("release should clear the selection")
	}

	res = s.Select(Cell{2, 0}, Cell{0, 0})
	if res.Outcome != Found || !res.IsLastWord {
		t.Fatalf("expected last word, got %+v", res)
	}
	if len(rec.words) != 2 || rec.words[1] != "CAT" || !rec.last[1] || rec.last[0] {
		t.Fatalf("unexpected notifications %v %v", rec.words, rec.last)
	}

	// Re-finding a word is a no-op and does not notify.
	if res := s.Select(Cell{0, 0}, Cell{2, 0}); res.Outcome != AlreadyFound {
		t.Fatalf("expected already_found, got %s", res.Outcome)
	}
	if len(rec.words) != 2 {
		t.Fatal("listener fired for an already found word")
	}
}

func TestSessionCancel(t *testing.T) {
	s := newTestSession()
	s.Press(Cell{0, 0})
	s.Move(Cell{2, 0})
	s.Cancel()

	if res := s.Release(); res.Outcome != NoMatch {
		t.Fatalf("release after cancel should not match, got %s", res.Outcome)
	}
	if s.FoundCount() != 0 {
		t.Fatal("cancel must not record a word")
	}
}

func TestSessionMoveWithoutPress(t *testing.T) {
	s := newTestSession()
	if got := s.Move(Cell{1, 1}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSessionPressOnlyMatchesSingleCell(t *testing.T) {
	s := New("x", 0, Bounds{Rows: 2, Cols: 2}, WordLocations{"1,1": "I"})
	s.Press(Cell{1, 1})
	if res := s.Release(); res.Outcome != Found || res.Word != "I" {
		t.Fatalf("expected single cell word, got %+v", res)
	}
}

func TestSessionLoadResets(t *testing.T) {
	s := newTestSession()
	s.Select(Cell{0, 0}, Cell{2, 0})
	s.Press(Cell{1, 1})

	s.Load(1, Bounds{Rows: 2, Cols: 2}, WordLocations{"0,0,1,0": "AT"})
	if s.PuzzleIndex != 1 || s.FoundCount() != 0 || s.Total() != 1 || s.Pressing() {
		t.Fatal("load should reset found words and selection")
	}
}

func TestRestoreSession(t *testing.T) {
	table := WordLocations{"0,0,1,0,2,0": "CAT", "0,0,1,1,2,2": "CUP"}
	s, err := Restore("abc", 4, Bounds{Rows: 3, Cols: 3}, table, map[string]string{"0,0,1,0,2,0": "CAT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "abc" || s.PuzzleIndex != 4 || s.FoundCount() != 1 {
		t.Fatalf("unexpected restored session %+v", s)
	}
	if !s.FoundCells()[Cell{2, 0}] {
		t.Fatal("restored found cells missing")
	}
}
