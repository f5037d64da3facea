// main.go
//
// Entry point for the word search server.
//   - Loads .env (if present) and sets the zerolog level from LOG_LEVEL.
//   - Opens SQLite (DB_PATH) and applies the embedded migrations.
//   - Loads the puzzle catalog (PUZZLES_FILE, PUZZLES_URL or the embedded set).
//   - Serves HTTP on PORT.

package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/assets"
	"github.com/robalobadob/wordsearch/internal/httpserver"
	"github.com/robalobadob/wordsearch/internal/progress"
	"github.com/robalobadob/wordsearch/internal/puzzle"
	"github.com/robalobadob/wordsearch/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := progress.Open(getEnv("DB_PATH", "./data/wordsearch.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := progress.Migrate(db, assets.Migrations); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := puzzle.Load(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzles")
	}

	srv := httpserver.New(store.NewMemoryStore(), db, catalog)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("puzzles", catalog.Len()).Msg("starting wordsearch server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
