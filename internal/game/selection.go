// internal/game/selection.go
//
// Turns a raw start/end drag into the set of cells it selects.
//
// Rules:
//   - A drag whose start and end differ on both axes is diagonal. It is forced
//     onto a true 45° line whose length is the larger of the two spans, keeping
//     the direction of the drag on each axis, then clamped to the grid.
//   - Horizontal and vertical drags select every cell between start and end.
//   - Cells are emitted in row-major order of the bounding rectangle. The order
//     is part of the cell key contract, not of the drag direction.

package game

import "fmt"

// Normalize returns the cells selected by a drag from start to end.
// Both cells must lie inside b; violating that is a caller bug and panics.
func Normalize(b Bounds, start, end Cell) Selection {
	if !b.Valid() {
		panic(fmt.Sprintf("game: normalize on empty bounds %dx%d", b.Cols, b.Rows))
	}
	if !b.Contains(start) || !b.Contains(end) {
		panic(fmt.Sprintf("game: normalize %v→%v outside %dx%d", start, end, b.Cols, b.Rows))
	}

	rowDiff := abs(start.Row - end.Row)
	colDiff := abs(start.Col - end.Col)
	largerDiff := max(rowDiff, colDiff)
	diagonal := rowDiff != 0 && colDiff != 0

	if diagonal {
		if start.Col > end.Col {
			end.Col = start.Col - largerDiff
		} else {
			end.Col = start.Col + largerDiff
		}
		if start.Row > end.Row {
			end.Row = start.Row - largerDiff
		} else {
			end.Row = start.Row + largerDiff
		}
		end.Col = clamp(end.Col, 0, b.Cols-1)
		end.Row = clamp(end.Row, 0, b.Rows-1)
	}

	minRow, maxRow := min(start.Row, end.Row), max(start.Row, end.Row)
	minCol, maxCol := min(start.Col, end.Col), max(start.Col, end.Col)

	out := make(Selection, 0, largerDiff+1)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !diagonal || abs(col-start.Col) == abs(row-start.Row) {
				out = append(out, Cell{Col: col, Row: row})
			}
		}
	}
	return out
}

// IsStraight reports whether sel is a contiguous horizontal, vertical or
// diagonal run in row-major order, i.e. what Normalize could have produced
// from its first and last cell.
func IsStraight(b Bounds, sel Selection) bool {
	if len(sel) == 0 {
		return false
	}
	for _, c := range sel {
		if !b.Contains(c) {
			return false
		}
	}
	want := Normalize(b, sel[0], sel[len(sel)-1])
	if len(want) != len(sel) {
		return false
	}
	for i := range want {
		if want[i] != sel[i] {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(n, lo, hi int) int { return max(lo, min(n, hi)) }
