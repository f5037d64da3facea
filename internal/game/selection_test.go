package game

import "testing"

func cells(pairs ...int) Selection {
	out := make(Selection, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Cell{Col: pairs[i], Row: pairs[i+1]})
	}
	return out
}

func sameSelection(a, b Selection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		bounds     Bounds
		start, end Cell
		want       Selection
		key        string
	}{
		{"diagonal to corner", Bounds{3, 3}, Cell{0, 0}, Cell{2, 2}, cells(0, 0, 1, 1, 2, 2), "0,0,1,1,2,2"},
		{"horizontal", Bounds{3, 3}, Cell{0, 0}, Cell{2, 0}, cells(0, 0, 1, 0, 2, 0), "0,0,1,0,2,0"},
		{"ragged diagonal clamped", Bounds{4, 4}, Cell{1, 1}, Cell{3, 0}, cells(2, 0, 1, 1), "2,0,1,1"},
		{"horizontal right to left", Bounds{3, 3}, Cell{2, 1}, Cell{0, 1}, cells(0, 1, 1, 1, 2, 1), "0,1,1,1,2,1"},
		{"vertical upward", Bounds{4, 2}, Cell{1, 3}, Cell{1, 0}, cells(1, 0, 1, 1, 1, 2, 1, 3), "1,0,1,1,1,2,1,3"},
		{"anti diagonal", Bounds{3, 3}, Cell{2, 0}, Cell{0, 2}, cells(2, 0, 1, 1, 0, 2), "2,0,1,1,0,2"},
		{"anti diagonal dragged up", Bounds{3, 3}, Cell{0, 2}, Cell{2, 0}, cells(2, 0, 1, 1, 0, 2), "2,0,1,1,0,2"},
		{"ragged diagonal extends rows", Bounds{5, 5}, Cell{0, 0}, Cell{3, 1}, cells(0, 0, 1, 1, 2, 2, 3, 3), "0,0,1,1,2,2,3,3"},
		{"ragged diagonal extends cols", Bounds{5, 5}, Cell{4, 4}, Cell{3, 1}, cells(1, 1, 2, 2, 3, 3, 4, 4), "1,1,2,2,3,3,4,4"},
		{"single cell", Bounds{3, 3}, Cell{1, 2}, Cell{1, 2}, cells(1, 2), "1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.bounds, tt.start, tt.end)
			if !sameSelection(got, tt.want) {
				t.Fatalf("Normalize(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
			if k := EncodeKey(got); k != tt.key {
				t.Errorf("EncodeKey = %q, want %q", k, tt.key)
			}
		})
	}
}

func TestNormalizeProperties(t *testing.T) {
	b := Bounds{Rows: 5, Cols: 7}
	for sr := 0; sr < b.Rows; sr++ {
		for sc := 0; sc < b.Cols; sc++ {
			start := Cell{Col: sc, Row: sr}
			for er := 0; er < b.Rows; er++ {
				for ec := 0; ec < b.Cols; ec++ {
					end := Cell{Col: ec, Row: er}
					checkNormalized(t, b, start, end)
				}
			}
		}
	}
}

func checkNormalized(t *testing.T, b Bounds, start, end Cell) {
	t.Helper()
	sel := Normalize(b, start, end)
	rowDiff, colDiff := abs(start.Row-end.Row), abs(start.Col-end.Col)
	larger := max(rowDiff, colDiff)

	if !sel.Contains(start) {
		t.Fatalf("%v→%v: selection %v misses start", start, end, sel)
	}
	for i, c := range sel {
		if !b.Contains(c) {
			t.Fatalf("%v→%v: %v out of bounds", start, end, c)
		}
		if i > 0 {
			prev := sel[i-1]
			if c.Row < prev.Row || (c.Row == prev.Row && c.Col <= prev.Col) {
				t.Fatalf("%v→%v: %v not in row-major order", start, end, sel)
			}
		}
	}

	if rowDiff == 0 || colDiff == 0 {
		if len(sel) != larger+1 {
			t.Fatalf("%v→%v: got %d cells, want %d", start, end, len(sel), larger+1)
		}
		if !sel.Contains(end) {
			t.Fatalf("%v→%v: straight selection misses end", start, end)
		}
		return
	}

	for _, c := range sel {
		if abs(c.Col-start.Col) != abs(c.Row-start.Row) {
			t.Fatalf("%v→%v: %v off the diagonal", start, end, c)
		}
	}
	if len(sel) > larger+1 {
		t.Fatalf("%v→%v: got %d cells, want at most %d", start, end, len(sel), larger+1)
	}
	dc, dr := larger, larger
	if start.Col > end.Col {
		dc = -larger
	}
	if start.Row > end.Row {
		dr = -larger
	}
	if b.Contains(Cell{Col: start.Col + dc, Row: start.Row + dr}) && len(sel) != larger+1 {
		t.Fatalf("%v→%v: unclamped diagonal has %d cells, want %d", start, end, len(sel), larger+1)
	}
}

func TestNormalizePanicsOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-bounds end cell")
		}
	}()
	Normalize(Bounds{3, 3}, Cell{0, 0}, Cell{3, 0})
}

func TestIsStraight(t *testing.T) {
	b := Bounds{Rows: 4, Cols: 4}
	if !IsStraight(b, cells(0, 0, 1, 1, 2, 2)) {
		t.Error("diagonal should be straight")
	}
	if !IsStraight(b, cells(3, 0, 2, 1, 1, 2)) {
		t.Error("anti diagonal should be straight")
	}
	if IsStraight(b, cells(0, 0, 2, 0)) {
		t.Error("gap should not be straight")
	}
	if IsStraight(b, cells(2, 0, 1, 0, 0, 0)) {
		t.Error("reverse order should not be straight")
	}
	if IsStraight(b, cells(0, 0, 4, 0)) {
		t.Error("out of bounds cell should not be straight")
	}
	if IsStraight(b, nil) {
		t.Error("empty selection should not be straight")
	}
}
