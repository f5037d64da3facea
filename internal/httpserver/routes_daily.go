// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's puzzle (creates or reuses a session)
//   - GET  /daily/leaderboard → fastest completions for today (or a given date)
//
// A daily session is an ordinary game session in "daily" mode: it is played
// through the /game/{id} routes, cannot advance, and its completion is stored
// in daily_results. Each player gets one result per day.
// The puzzle index is deterministic per date (HMAC of date + salt).

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// dailyNow returns today's date key and puzzle index.
func (s *Server) dailyNow() (string, int) {
	now := time.Now().UTC()
	return daily.DateKey(now), daily.PuzzleIndex(now, s.salt, s.catalog.Len())
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string    `json:"gameId"`
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

// handleDailyNew creates or reuses today's session for the caller.
// - If the caller already has a result for today → Played=true.
// - Otherwise reuse their live daily session or start one.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	meta := s.callerMeta(w, r, modeDaily)
	date, idx := s.dailyNow()
	meta.Date = date

	if played, err := s.daily.AlreadyPlayed(r.Context(), meta.owner(), date); err == nil && played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	if id := s.findDaily(meta); id != "" {
		mu := s.store.Lock(id)
		mu.Lock()
		defer mu.Unlock()
		if sess, err := s.session(r.Context(), id); err == nil {
			v := s.viewOf(sess)
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: id, Date: date, Game: &v})
			return
		}
	}

	sess, err := s.startSession(r.Context(), idx, meta)
	if err != nil {
		log.Error().Err(err).Msg("daily new")
		jsonError(w, "db_error", http.StatusInternalServerError)
		return
	}
	v := s.viewOf(sess)
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.ID, Date: date, Game: &v})
}

// findDaily returns the live daily session of m's owner for m.Date, if any.
func (s *Server) findDaily(m sessionMeta) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.owner {
		if o.Mode == modeDaily && o.Date == m.Date && o.owner() == m.owner() {
			return id
		}
	}
	return ""
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = s.dailyNow()
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		jsonError(w, "server_error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
