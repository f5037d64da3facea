// internal/puzzle/puzzle.go
//
// Puzzle records and their strict validation.
//
// Records arrive as line-delimited JSON, one puzzle per line:
//
//	{"source_language":"en","word":"cat","character_grid":[["g","a",...],...],
//	 "word_locations":{"0,0,1,0,2,0,3,0":"gato"},"target_language":"es"}
//
// Validation rules (any failure rejects the whole load):
//   - character_grid is non-empty and rectangular.
//   - every grid cell is exactly one grapheme after NFC normalization.
//   - word_locations is non-empty; every key parses, stays inside the grid and
//     is a straight run in row-major order (what a drag can select).
//
// Glyphs and words are normalized to NFC so "ñ" typed as n + combining tilde
// compares equal to the precomposed form.

package puzzle

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/robalobadob/wordsearch/internal/game"
)

// ErrMalformed marks a puzzle record that fails validation.
var ErrMalformed = errors.New("puzzle: malformed record")

// maxLine bounds a single JSON record.
const maxLine = 1 << 20

// Puzzle is one word search: a letter grid plus the hidden word locations.
type Puzzle struct {
	Word           string             `json:"word"`
	SourceLanguage string             `json:"source_language"`
	TargetLanguage string             `json:"target_language"`
	Grid           [][]string         `json:"character_grid"`
	WordLocations  game.WordLocations `json:"word_locations"`
}

// Bounds returns the grid dimensions.
func (p *Puzzle) Bounds() game.Bounds {
	if len(p.Grid) == 0 {
		return game.Bounds{}
	}
	return game.Bounds{Rows: len(p.Grid), Cols: len(p.Grid[0])}
}

// Letters spells the glyphs under sel.
func (p *Puzzle) Letters(sel game.Selection) string {
	var sb strings.Builder
	for _, c := range sel {
		sb.WriteString(p.Grid[c.Row][c.Col])
	}
	return sb.String()
}

// Parse reads line-delimited JSON puzzle records. Blank lines are skipped.
func Parse(r io.Reader) ([]*Puzzle, error) {
	var out []*Puzzle
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var p Puzzle
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		if err := p.normalize(); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		out = append(out, &p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read puzzles: %w", err)
	}
	return out, nil
}

// normalize validates p in place and rewrites glyphs and words to NFC.
func (p *Puzzle) normalize() error {
	if len(p.Grid) == 0 || len(p.Grid[0]) == 0 {
		return errors.New("character_grid is empty")
	}
	cols := len(p.Grid[0])
	for r, row := range p.Grid {
		if len(row) != cols {
			return fmt.Errorf("character_grid row %d has %d cells, want %d", r, len(row), cols)
		}
		for c, glyph := range row {
			glyph = norm.NFC.String(strings.TrimSpace(glyph))
			if uniseg.GraphemeClusterCount(glyph) != 1 {
				return fmt.Errorf("character_grid cell (%d,%d) is %q, want one letter", c, r, glyph)
			}
			row[c] = glyph
		}
	}

	if len(p.WordLocations) == 0 {
		return errors.New("word_locations is empty")
	}
	b := p.Bounds()
	locs := make(game.WordLocations, len(p.WordLocations))
	for key, word := range p.WordLocations {
		sel, err := game.ParseKey(key)
		if err != nil {
			return err
		}
		if !game.IsStraight(b, sel) {
			return fmt.Errorf("word location %q is not a straight run inside %dx%d", key, b.Cols, b.Rows)
		}
		word = norm.NFC.String(strings.TrimSpace(word))
		if word == "" {
			return fmt.Errorf("word location %q has no word", key)
		}
		// Canonical form drops any whitespace the source put inside the key.
		canon := game.EncodeKey(sel)
		if _, dup := locs[canon]; dup {
			return fmt.Errorf("word location %q listed twice", canon)
		}
		locs[canon] = word
		if n := uniseg.GraphemeClusterCount(word); n != len(sel) {
			log.Warn().Str("key", canon).Str("word", word).Int("cells", len(sel)).Int("letters", n).
				Msg("word length does not match its location")
		}
	}
	p.WordLocations = locs
	p.Word = strings.TrimSpace(p.Word)
	return nil
}
