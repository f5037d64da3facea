// internal/puzzle/catalog.go
//
// Loads the list of puzzles the game cycles through.
//
// Source selection (Load):
//  1. PUZZLES_FILE set → read line-delimited JSON from that path.
//  2. PUZZLES_URL set  → HTTP GET the same format (bounded by a timeout).
//  3. neither          → the small embedded set in assets/puzzles.jsonl.
//
// Environment variables:
//
//	PUZZLES_FILE=/path/to/find_challenges.txt
//	PUZZLES_URL=https://example.com/find_challenges.txt
//
// The catalog is immutable after loading; Get wraps around so the game loops.

package puzzle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/assets"
)

const fetchTimeout = 15 * time.Second

// Catalog is an ordered, read-only list of puzzles.
type Catalog struct {
	puzzles []*Puzzle
	source  string
}

// NewCatalog wraps already parsed puzzles.
func NewCatalog(source string, puzzles []*Puzzle) (*Catalog, error) {
	if len(puzzles) == 0 {
		return nil, errors.New("puzzle: catalog is empty")
	}
	return &Catalog{puzzles: puzzles, source: source}, nil
}

// Load picks a source from the environment and parses it.
func Load(ctx context.Context) (*Catalog, error) {
	switch {
	case os.Getenv("PUZZLES_FILE") != "":
		return LoadFile(os.Getenv("PUZZLES_FILE"))
	case os.Getenv("PUZZLES_URL") != "":
		return Fetch(ctx, http.DefaultClient, os.Getenv("PUZZLES_URL"))
	default:
		return LoadEmbedded()
	}
}

// LoadFile parses puzzles from a local file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCatalog(path, f)
}

// LoadEmbedded parses the puzzles bundled with the binary.
func LoadEmbedded() (*Catalog, error) {
	return parseCatalog("embedded", bytes.NewReader(assets.Puzzles))
}

// Fetch downloads puzzles from url.
func Fetch(ctx context.Context, client *http.Client, url string) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch puzzles: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch puzzles: %s", res.Status)
	}
	return parseCatalog(url, io.LimitReader(res.Body, 32<<20))
}

func parseCatalog(source string, r io.Reader) (*Catalog, error) {
	ps, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	c, err := NewCatalog(source, ps)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", source).Int("puzzles", len(ps)).Msg("puzzles loaded")
	return c, nil
}

// Len returns the number of puzzles.
func (c *Catalog) Len() int { return len(c.puzzles) }

// Source describes where the puzzles came from.
func (c *Catalog) Source() string { return c.source }

// Index wraps i into [0, Len()).
func (c *Catalog) Index(i int) int {
	n := len(c.puzzles)
	return ((i % n) + n) % n
}

// Get returns the puzzle at i, wrapping around.
func (c *Catalog) Get(i int) *Puzzle { return c.puzzles[c.Index(i)] }

// Next returns the index following i, looping back to the first puzzle.
func (c *Catalog) Next(i int) int { return c.Index(i + 1) }
