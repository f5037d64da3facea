// internal/tui/layout.go
//
// Mapping between terminal coordinates and grid cells.
// Each grid cell is drawn CellWidth columns wide and one row tall, starting
// at (Left, Top). Pointer positions outside the grid clamp to the nearest
// edge cell so a drag that leaves the board keeps extending along its edge.

package tui

import (
	"github.com/rivo/uniseg"

	"github.com/robalobadob/wordsearch/internal/game"
)

// Layout places a grid on the screen.
type Layout struct {
	Left, Top int
	CellWidth int
	Bounds    game.Bounds
}

// NewLayout sizes cells to fit the widest glyph plus one column of padding
// and centers the grid in a w x h screen.
func NewLayout(grid [][]string, w, h int) Layout {
	glyph := 1
	for _, row := range grid {
		for _, g := range row {
			glyph = max(glyph, uniseg.StringWidth(g))
		}
	}
	l := Layout{CellWidth: glyph + 1}
	if len(grid) > 0 {
		l.Bounds = game.Bounds{Rows: len(grid), Cols: len(grid[0])}
	}
	l.Left = max(0, (w-l.Width())/2)
	l.Top = max(headerRows, (h-l.Bounds.Rows)/2)
	return l
}

// Width is the number of screen columns the grid occupies.
func (l Layout) Width() int { return l.Bounds.Cols * l.CellWidth }

// Inside reports whether screen position (x, y) falls on a grid cell.
func (l Layout) Inside(x, y int) bool {
	return x >= l.Left && x < l.Left+l.Width() && y >= l.Top && y < l.Top+l.Bounds.Rows
}

// CellAt returns the cell under (x, y), clamped to the grid.
func (l Layout) CellAt(x, y int) game.Cell {
	col := floorDiv(x-l.Left, l.CellWidth)
	row := y - l.Top
	return game.Cell{
		Col: max(0, min(col, l.Bounds.Cols-1)),
		Row: max(0, min(row, l.Bounds.Rows-1)),
	}
}

// Origin returns the screen position of the first column of cell c.
func (l Layout) Origin(c game.Cell) (int, int) {
	return l.Left + c.Col*l.CellWidth, l.Top + c.Row
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
