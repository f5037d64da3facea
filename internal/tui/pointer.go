package tui

import (
	"github.com/robalobadob/wordsearch/internal/game"
)

// Pointer turns raw button state into session gestures.
// A gesture starts when the button goes down over the grid, follows every
// motion while held (clamped to the grid) and ends when the button is
// released anywhere.
type Pointer struct {
	Session *game.Session
	Layout  Layout
}

// Handle feeds one mouse report. It returns the match result and true when
// the report ended a gesture.
func (p *Pointer) Handle(x, y int, down bool) (game.MatchResult, bool) {
	s := p.Session
	switch {
	case down && !s.Pressing():
		if p.Layout.Inside(x, y) {
			s.Press(p.Layout.CellAt(x, y))
		}
	case down:
		s.Move(p.Layout.CellAt(x, y))
	case s.Pressing():
		return s.Release(), true
	}
	return game.MatchResult{}, false
}
