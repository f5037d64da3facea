// internal/game/types.go
//
// Core type definitions for the word search engine.
// Defines:
//   - Cell / Bounds / Selection: grid coordinates and an ordered pick of cells.
//   - Outcome / MatchResult: what the matcher decided for a selection.
//   - WordLocations: canonical cell key → hidden word table of one puzzle.

package game

import "fmt"

// Cell is a (column, row) coordinate in the letter grid.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Col, c.Row) }

// Bounds holds the fixed dimensions of one puzzle grid.
type Bounds struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Valid reports whether both dimensions are positive.
func (b Bounds) Valid() bool { return b.Rows > 0 && b.Cols > 0 }

// Contains reports whether c lies inside [0,Cols) x [0,Rows).
func (b Bounds) Contains(c Cell) bool {
	return c.Col >= 0 && c.Col < b.Cols && c.Row >= 0 && c.Row < b.Rows
}

// Selection is an ordered run of cells in row-major scan order.
type Selection []Cell

// Key returns the canonical cell key of the selection.
func (s Selection) Key() string { return EncodeKey(s) }

// Contains reports whether c is part of the selection.
func (s Selection) Contains(c Cell) bool {
	for _, x := range s {
		if x == c {
			return true
		}
	}
	return false
}

// WordLocations maps the canonical key of each hidden word to the word.
type WordLocations map[string]string

// Outcome is the matcher's verdict for one selection.
// Possible values:
//   - "no_match":      the selection is not a hidden word.
//   - "found":         a hidden word was found for the first time.
//   - "already_found": the selection is a hidden word that was found earlier.
type Outcome string

const (
	NoMatch      Outcome = "no_match"
	Found        Outcome = "found"
	AlreadyFound Outcome = "already_found"
)

// MatchResult is returned by Matcher.Match.
type MatchResult struct {
	Outcome    Outcome `json:"outcome"`
	Word       string  `json:"word,omitempty"`
	Key        string  `json:"key,omitempty"`
	IsLastWord bool    `json:"isLastWord"`
}
