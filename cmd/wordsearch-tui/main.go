// cmd/wordsearch-tui/main.go
//
// Terminal word search. Drag with the mouse over a word to select it;
// Esc or Ctrl-C quits.
//
// Logs go to LOG_FILE (default wordsearch-tui.log) so they do not draw over
// the screen.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/puzzle"
	"github.com/robalobadob/wordsearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	start := flag.Int("puzzle", 0, "Index of the first puzzle")
	delay := flag.Duration("delay", envDelay(), "Pause after the last word before the next puzzle")
	flag.Parse()

	logFile, err := os.OpenFile(getEnv("LOG_FILE", "wordsearch-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := puzzle.Load(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load puzzles:", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "terminal:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "terminal:", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	log.Info().Str("source", catalog.Source()).Int("puzzles", catalog.Len()).Msg("starting tui")
	tui.New(screen, catalog, *start, *delay).Run()
}

// envDelay reads NEXT_PUZZLE_DELAY_MS (default 650ms).
func envDelay() time.Duration {
	ms := 650
	if v := os.Getenv("NEXT_PUZZLE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
