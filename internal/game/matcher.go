// internal/game/matcher.go
//
// Word matching for a single puzzle.
// Responsibilities:
//   - Encode a Selection into its canonical cell key ("col,row,col,row,...").
//   - Look the key up in the puzzle's word location table.
//   - Track found words (monotonic; a found word is never "unfound").
//   - Report whether the last hidden word has just been found.
//
// Re-selecting a word that was already found returns AlreadyFound and changes
// nothing, so listeners never see the same word twice.

package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadKey is returned when a cell key cannot be parsed.
var ErrBadKey = errors.New("game: malformed cell key")

// EncodeKey joins the selection's col,row pairs with commas, in order.
func EncodeKey(sel Selection) string {
	var sb strings.Builder
	for i, c := range sel {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c.Col))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(c.Row))
	}
	return sb.String()
}

// ParseKey is the inverse of EncodeKey.
func ParseKey(key string) (Selection, error) {
	parts := strings.Split(key, ",")
	if key == "" || len(parts)%2 != 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	out := make(Selection, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		col, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || col < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadKey, key)
		}
		row, err := strconv.Atoi(strings.TrimSpace(parts[i+1]))
		if err != nil || row < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadKey, key)
		}
		out = append(out, Cell{Col: col, Row: row})
	}
	return out, nil
}

// Matcher owns the found-word state of one puzzle.
// It is not safe for concurrent use; callers serialize access.
type Matcher struct {
	table WordLocations
	found map[string]string
}

// NewMatcher returns a matcher with nothing found yet.
// The table is treated as immutable and must not be modified afterwards.
func NewMatcher(table WordLocations) *Matcher {
	return &Matcher{table: table, found: make(map[string]string, len(table))}
}

// RestoreMatcher rebuilds a matcher from previously found words.
// Every found key must exist in the table.
func RestoreMatcher(table WordLocations, found map[string]string) (*Matcher, error) {
	m := NewMatcher(table)
	for k := range found {
		w, ok := table[k]
		if !ok {
			return nil, fmt.Errorf("restore: key %q not in word locations", k)
		}
		m.found[k] = w
	}
	return m, nil
}

// Match decides whether sel spells one of the hidden words.
func (m *Matcher) Match(sel Selection) MatchResult {
	key := EncodeKey(sel)
	word, ok := m.table[key]
	if !ok {
		return MatchResult{Outcome: NoMatch, Key: key}
	}
	if _, seen := m.found[key]; seen {
		return MatchResult{Outcome: AlreadyFound, Word: word, Key: key}
	}
	m.found[key] = word
	return MatchResult{Outcome: Found, Word: word, Key: key, IsLastWord: m.Complete()}
}

// Complete reports whether every hidden word has been found.
func (m *Matcher) Complete() bool { return len(m.found) >= len(m.table) }

// FoundCount returns the number of words found so far.
func (m *Matcher) FoundCount() int { return len(m.found) }

// Total returns the number of hidden words.
func (m *Matcher) Total() int { return len(m.table) }

// Found returns a copy of the found key → word mapping.
func (m *Matcher) Found() map[string]string {
	out := make(map[string]string, len(m.found))
	for k, w := range m.found {
		out[k] = w
	}
	return out
}

// FoundCells returns every cell that belongs to a found word.
func (m *Matcher) FoundCells() map[Cell]bool {
	out := make(map[Cell]bool)
	for k := range m.found {
		sel, err := ParseKey(k)
		if err != nil {
			continue
		}
		for _, c := range sel {
			out[c] = true
		}
	}
	return out
}
