package puzzle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/wordsearch/internal/game"
)

const catRecord = `{"source_language": "en", "word": "cat", "character_grid": [["g", "a", "t", "o"], ["x", "y", "z", "w"]], "word_locations": {"0,0,1,0,2,0,3,0": "gato"}, "target_language": "es"}`

func TestParse(t *testing.T) {
	ps, err := Parse(strings.NewReader(catRecord + "\n\n" + catRecord + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("expected 2 puzzles, got %d", len(ps))
	}
	p := ps[0]
	if p.Word != "cat" || p.SourceLanguage != "en" || p.TargetLanguage != "es" {
		t.Fatalf("unexpected metadata %+v", p)
	}
	if b := p.Bounds(); b.Rows != 2 || b.Cols != 4 {
		t.Fatalf("unexpected bounds %+v", b)
	}
	sel := game.Normalize(p.Bounds(), game.Cell{Col: 0, Row: 0}, game.Cell{Col: 3, Row: 0})
	if got := p.Letters(sel); got != "gato" {
		t.Fatalf("expected gato, got %q", got)
	}
	if p.WordLocations[sel.Key()] != "gato" {
		t.Fatal("selection key not found in word locations")
	}
}

func TestParseNormalizesToNFC(t *testing.T) {
	// "n" + U+0303 COMBINING TILDE in both the grid and the word.
	rec := `{"word":"child","character_grid":[["n","i","n\u0303","o"]],"word_locations":{"0, 0, 1, 0, 2, 0, 3, 0":"nin\u0303o"}}`
	ps, err := Parse(strings.NewReader(rec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := ps[0]
	if p.Grid[0][2] != "\u00f1" {
		t.Fatalf("expected precomposed ñ, got %q", p.Grid[0][2])
	}
	if p.WordLocations["0,0,1,0,2,0,3,0"] != "ni\u00f1o" {
		t.Fatalf("expected canonical key and NFC word, got %v", p.WordLocations)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		rec  string
	}{
		{"bad json", `{"word":`},
		{"empty grid", `{"character_grid":[],"word_locations":{"0,0":"a"}}`},
		{"ragged grid", `{"character_grid":[["a","b"],["c"]],"word_locations":{"0,0":"a"}}`},
		{"multi letter cell", `{"character_grid":[["ab","c"]],"word_locations":{"0,0":"a"}}`},
		{"no words", `{"character_grid":[["a","b"]],"word_locations":{}}`},
		{"bad key", `{"character_grid":[["a","b"]],"word_locations":{"0,x":"a"}}`},
		{"out of bounds", `{"character_grid":[["a","b"]],"word_locations":{"0,0,1,0,2,0":"abc"}}`},
		{"not straight", `{"character_grid":[["a","b","c"],["d","e","f"]],"word_locations":{"0,0,2,1":"af"}}`},
		{"empty word", `{"character_grid":[["a","b"]],"word_locations":{"0,0,1,0":" "}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(catRecord + "\n" + tt.rec))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if !strings.Contains(err.Error(), "line 2") {
				t.Fatalf("expected line number in %q", err)
			}
		})
	}
}

func TestLoadEmbedded(t *testing.T) {
	c, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() < 2 {
		t.Fatalf("expected several embedded puzzles, got %d", c.Len())
	}
	for i := 0; i < c.Len(); i++ {
		p := c.Get(i)
		for key, word := range p.WordLocations {
			sel, _ := game.ParseKey(key)
			if got := p.Letters(sel); got != word {
				t.Errorf("puzzle %d: %q spells %q, want %q", i, key, got, word)
			}
		}
	}
}

func TestCatalogWraps(t *testing.T) {
	ps, _ := Parse(strings.NewReader(catRecord + "\n" + catRecord))
	c, err := NewCatalog("test", ps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Next(1) != 0 || c.Index(-1) != 1 || c.Get(5) != ps[1] {
		t.Fatal("catalog indices should wrap around")
	}
	if _, err := NewCatalog("empty", nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzles.jsonl")
	if err := os.WriteFile(path, []byte(catRecord+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PUZZLES_FILE", path)
	c, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 || c.Source() != path {
		t.Fatalf("unexpected catalog %d from %s", c.Len(), c.Source())
	}
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find_challenges.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(catRecord + "\n" + catRecord + "\n"))
	}))
	defer ts.Close()

	c, err := Fetch(context.Background(), ts.Client(), ts.URL+"/find_challenges.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 puzzles, got %d", c.Len())
	}

	if _, err := Fetch(context.Background(), ts.Client(), ts.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}
