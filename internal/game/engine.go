// internal/game/engine.go
//
// Core engine for a single word search session.
// Responsibilities:
//   - Hold the bounds and matcher of the puzzle currently on screen.
//   - Turn pointer gestures (press, move, release, cancel) into selections
//     and matches.
//   - Notify listeners when a word is found, flagging the last word.
//   - Swap in the next puzzle, resetting found words.
//
// Notes:
//   - A Session is not goroutine-safe. Hosts serialize access per session.
//   - Matching only happens on Release; Move just updates the highlight.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Listener is told about every newly found word.
type Listener interface {
	OnWordFound(s *Session, word string, isLastWord bool)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(s *Session, word string, isLastWord bool)

func (f ListenerFunc) OnWordFound(s *Session, word string, isLastWord bool) { f(s, word, isLastWord) }

// Session drives one player's progress through a sequence of puzzles.
type Session struct {
	ID          string    // Unique session identifier (random hex string).
	PuzzleIndex int       // Index of the puzzle on screen in the catalog.
	Bounds      Bounds    // Grid bounds of the current puzzle.
	StartedAt   time.Time // When the current puzzle was loaded.

	matcher   *Matcher
	pressed   bool
	start     Cell
	current   Selection
	listeners []Listener
}

// New constructs a session showing the puzzle at index.
// If id is empty a random one is generated.
func New(id string, index int, b Bounds, table WordLocations) *Session {
	if id == "" {
		id = randomID()
	}
	s := &Session{ID: id}
	s.Load(index, b, table)
	return s
}

// Restore rebuilds a session from a persisted puzzle index and found words.
func Restore(id string, index int, b Bounds, table WordLocations, found map[string]string) (*Session, error) {
	m, err := RestoreMatcher(table, found)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	s := New(id, index, b, table)
	s.matcher = m
	return s, nil
}

// Load replaces the current puzzle wholesale. Found words and any
// in-progress selection are discarded.
func (s *Session) Load(index int, b Bounds, table WordLocations) {
	s.PuzzleIndex = index
	s.Bounds = b
	s.StartedAt = time.Now()
	s.matcher = NewMatcher(table)
	s.clear()
}

// Listen registers l for word-found notifications.
func (s *Session) Listen(l Listener) { s.listeners = append(s.listeners, l) }

// Press starts a selection at c.
func (s *Session) Press(c Cell) Selection {
	s.pressed = true
	s.start = c
	s.current = Normalize(s.Bounds, c, c)
	return s.current
}

// Move extends the in-progress selection to c and returns the cells to
// highlight. Without a prior Press it does nothing and returns nil.
func (s *Session) Move(c Cell) Selection {
	if !s.pressed {
		return nil
	}
	s.current = Normalize(s.Bounds, s.start, c)
	return s.current
}

// Release matches the last highlighted selection and clears it.
func (s *Session) Release() MatchResult {
	if !s.pressed {
		return MatchResult{Outcome: NoMatch}
	}
	sel := s.current
	s.clear()

	res := s.matcher.Match(sel)
	if res.Outcome == Found {
		for _, l := range s.listeners {
			l.OnWordFound(s, res.Word, res.IsLastWord)
		}
	}
	return res
}

// Cancel drops the in-progress selection without matching it.
func (s *Session) Cancel() { s.clear() }

// Select is Press(start), Move(end), Release() in one call.
func (s *Session) Select(start, end Cell) MatchResult {
	s.Press(start)
	s.Move(end)
	return s.Release()
}

// Highlighted returns the in-progress selection, if any.
func (s *Session) Highlighted() Selection { return s.current }

// Pressing reports whether a gesture is in progress.
func (s *Session) Pressing() bool { return s.pressed }

// Found returns a copy of the found key → word mapping.
func (s *Session) Found() map[string]string { return s.matcher.Found() }

// FoundCells returns the cells covered by found words.
func (s *Session) FoundCells() map[Cell]bool { return s.matcher.FoundCells() }

// FoundCount returns the number of words found in the current puzzle.
func (s *Session) FoundCount() int { return s.matcher.FoundCount() }

// Total returns the number of hidden words in the current puzzle.
func (s *Session) Total() int { return s.matcher.Total() }

// Complete reports whether every hidden word has been found.
func (s *Session) Complete() bool { return s.matcher.Complete() }

func (s *Session) clear() {
	s.pressed = false
	s.start = Cell{}
	s.current = nil
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
