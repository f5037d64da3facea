package game

import (
	"errors"
	"testing"
)

func TestMatchFoundLastWord(t *testing.T) {
	m := NewMatcher(WordLocations{"0,0,1,0,2,0": "CAT"})
	sel := Normalize(Bounds{3, 3}, Cell{0, 0}, Cell{2, 0})

	res := m.Match(sel)
	if res.Outcome != Found || res.Word != "CAT" || !res.IsLastWord {
		t.Fatalf("unexpected result: %+v", res)
	}
	if m.FoundCount() != 1 || !m.Complete() {
		t.Fatalf("expected 1 found word and completion, got %d", m.FoundCount())
	}
}

func TestMatchNoMatchLeavesStateAlone(t *testing.T) {
	m := NewMatcher(WordLocations{"0,0,1,0,2,0": "CAT"})

	res := m.Match(cells(0, 0, 1, 0))
	if res.Outcome != NoMatch {
		t.Fatalf("expected no_match, got %s", res.Outcome)
	}
	if res.Key != "0,0,1,0" {
		t.Fatalf("unexpected key %q", res.Key)
	}
	if m.FoundCount() != 0 || m.Complete() {
		t.Fatal("no_match must not change found words")
	}
}

func TestMatchIsLastWordOnlyAtEnd(t *testing.T) {
	table := WordLocations{
		"0,0,1,0,2,0": "CAT",
		"0,0,0,1,0,2": "COW",
		"0,0,1,1,2,2": "CUP",
	}
	m := NewMatcher(table)
	order := []Selection{cells(0, 0, 0, 1, 0, 2), cells(0, 0, 1, 1, 2, 2), cells(0, 0, 1, 0, 2, 0)}

	for i, sel := range order {
		res := m.Match(sel)
		if res.Outcome != Found {
			t.Fatalf("step %d: expected found, got %s", i, res.Outcome)
		}
		wantLast := i == len(order)-1
		if res.IsLastWord != wantLast {
			t.Fatalf("step %d: isLastWord=%v, want %v", i, res.IsLastWord, wantLast)
		}
		if m.FoundCount() > m.Total() {
			t.Fatalf("found %d exceeds total %d", m.FoundCount(), m.Total())
		}
	}
}

func TestMatchAlreadyFound(t *testing.T) {
	m := NewMatcher(WordLocations{"0,0,1,0,2,0": "CAT", "0,1,1,1": "AT"})
	m.Match(cells(0, 0, 1, 0, 2, 0))

	res := m.Match(cells(0, 0, 1, 0, 2, 0))
	if res.Outcome != AlreadyFound || res.Word != "CAT" {
		t.Fatalf("expected already_found CAT, got %+v", res)
	}
	if res.IsLastWord {
		t.Fatal("already_found must not report the last word")
	}
	if m.FoundCount() != 1 {
		t.Fatalf("expected 1 found word, got %d", m.FoundCount())
	}
	if _, ok := m.Found()["0,0,1,0,2,0"]; !ok {
		t.Fatal("found key must stay found")
	}
}

func TestEncodeKeyDeterministic(t *testing.T) {
	a := Normalize(Bounds{4, 4}, Cell{3, 3}, Cell{0, 0})
	b := Normalize(Bounds{4, 4}, Cell{0, 0}, Cell{3, 3})
	if EncodeKey(a) != EncodeKey(b) {
		t.Fatalf("opposite drags over the same cells gave %q and %q", EncodeKey(a), EncodeKey(b))
	}
	if EncodeKey(a) != EncodeKey(a) {
		t.Fatal("encoding is not deterministic")
	}
	if EncodeKey(cells(1, 0, 0, 0)) == EncodeKey(cells(0, 0, 1, 0)) {
		t.Fatal("encoding must be order sensitive")
	}
}

func TestParseKey(t *testing.T) {
	sel, err := ParseKey("2,0,1,1,0,2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameSelection(sel, cells(2, 0, 1, 1, 0, 2)) {
		t.Fatalf("unexpected cells %v", sel)
	}
	if EncodeKey(sel) != "2,0,1,1,0,2" {
		t.Fatal("ParseKey/EncodeKey do not round-trip")
	}

	for _, bad := range []string{"", "1", "1,2,3", "a,b", "-1,0"} {
		if _, err := ParseKey(bad); !errors.Is(err, ErrBadKey) {
			t.Errorf("ParseKey(%q): expected ErrBadKey, got %v", bad, err)
		}
	}
}

func TestRestoreMatcher(t *testing.T) {
	table := WordLocations{"0,0,1,0": "AT", "0,1,1,1": "TO"}
	m, err := RestoreMatcher(table, map[string]string{"0,0,1,0": "AT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.FoundCount() != 1 || m.Complete() {
		t.Fatal("expected one of two words found")
	}
	if res := m.Match(cells(0, 1, 1, 1)); !res.IsLastWord {
		t.Fatal("second word should complete the puzzle")
	}

	if _, err := RestoreMatcher(table, map[string]string{"5,5": "X"}); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestFoundCells(t *testing.T) {
	m := NewMatcher(WordLocations{"0,0,1,1": "AB"})
	m.Match(cells(0, 0, 1, 1))
	fc := m.FoundCells()
	if !fc[Cell{0, 0}] || !fc[Cell{1, 1}] || fc[Cell{1, 0}] {
		t.Fatalf("unexpected found cells %v", fc)
	}
}
