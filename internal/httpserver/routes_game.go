// internal/httpserver/routes_game.go
//
// Game endpoints. One live game.Session per game ID.
//   - POST /game/new               → start at a puzzle (default 0)
//   - GET  /game/{id}              → grid + found words
//   - POST /game/{id}/press|move   → in-progress highlight
//   - POST /game/{id}/release      → match the highlight
//   - POST /game/{id}/cancel       → drop the highlight
//   - POST /game/{id}/select       → press+move+release in one call
//   - POST /game/{id}/next         → next puzzle once the current one is complete
//   - GET  /game/{id}/events       → SSE stream (registered in server.go)
//
// Every handler holds the session's mutex from the store while it drives the
// engine. Sessions missing from memory are rebuilt from SQLite.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/events"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/progress"
	"github.com/robalobadob/wordsearch/internal/store"
)

const (
	modeNormal = "normal"
	modeDaily  = "daily"
)

// sessionMeta records who plays a session and how.
type sessionMeta struct {
	UserID string // empty for guests
	AnonID string // guest cookie, empty once claimed
	Mode   string // modeNormal | modeDaily
	Date   string // daily date key
}

// owner returns the caller's user ID, or their anonymous ID.
func (m sessionMeta) owner() string {
	if m.UserID != "" {
		return m.UserID
	}
	return m.AnonID
}

// mountGame registers the /game routes (except the event stream).
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.withGame(s.handleGetGame))
	r.Post("/game/{id}/press", s.withGame(s.handlePress))
	r.Post("/game/{id}/move", s.withGame(s.handleMove))
	r.Post("/game/{id}/release", s.withGame(s.handleRelease))
	r.Post("/game/{id}/cancel", s.withGame(s.handleCancel))
	r.Post("/game/{id}/select", s.withGame(s.handleSelect))
	r.Post("/game/{id}/next", s.withGame(s.handleNext))
}

// -----------------------------------------------------------------------------
// views

type foundView struct {
	Word  string      `json:"word"`
	Key   string      `json:"key"`
	Cells []game.Cell `json:"cells"`
}

type gameView struct {
	GameID         string      `json:"gameId"`
	Mode           string      `json:"mode"`
	Puzzle         int         `json:"puzzle"`
	Word           string      `json:"word"`
	SourceLanguage string      `json:"sourceLanguage"`
	TargetLanguage string      `json:"targetLanguage"`
	Rows           int         `json:"rows"`
	Cols           int         `json:"cols"`
	Grid           [][]string  `json:"grid"`
	Found          []foundView `json:"found"`
	Total          int         `json:"total"`
	Complete       bool        `json:"complete"`
	NextDelayMs    int         `json:"nextDelayMs"`
}

type selectionView struct {
	Cells []game.Cell `json:"selection"`
	Key   string      `json:"key"`
}

type matchView struct {
	Outcome     game.Outcome `json:"outcome"`
	Word        string       `json:"word,omitempty"`
	Key         string       `json:"key"`
	IsLastWord  bool         `json:"isLastWord"`
	Found       int          `json:"found"`
	Total       int          `json:"total"`
	Complete    bool         `json:"complete"`
	NextDelayMs int          `json:"nextDelayMs,omitempty"`
}

func (s *Server) viewOf(sess *game.Session) gameView {
	p := s.catalog.Get(sess.PuzzleIndex)
	v := gameView{
		GameID:         sess.ID,
		Mode:           s.meta(sess.ID).Mode,
		Puzzle:         sess.PuzzleIndex,
		Word:           p.Word,
		SourceLanguage: p.SourceLanguage,
		TargetLanguage: p.TargetLanguage,
		Rows:           sess.Bounds.Rows,
		Cols:           sess.Bounds.Cols,
		Grid:           p.Grid,
		Found:          []foundView{},
		Total:          sess.Total(),
		Complete:       sess.Complete(),
		NextDelayMs:    envInt("NEXT_PUZZLE_DELAY_MS", 650),
	}
	for key, word := range sess.Found() {
		cells, _ := game.ParseKey(key)
		v.Found = append(v.Found, foundView{Word: word, Key: key, Cells: cells})
	}
	sort.Slice(v.Found, func(i, j int) bool { return v.Found[i].Key < v.Found[j].Key })
	return v
}

func selectionOf(sel game.Selection) selectionView {
	if sel == nil {
		sel = game.Selection{}
	}
	return selectionView{Cells: sel, Key: sel.Key()}
}

func matchOf(sess *game.Session, res game.MatchResult) matchView {
	v := matchView{
		Outcome:    res.Outcome,
		Word:       res.Word,
		Key:        res.Key,
		IsLastWord: res.IsLastWord,
		Found:      sess.FoundCount(),
		Total:      sess.Total(),
		Complete:   sess.Complete(),
	}
	if res.IsLastWord {
		v.NextDelayMs = envInt("NEXT_PUZZLE_DELAY_MS", 650)
	}
	return v
}

// -----------------------------------------------------------------------------
// session plumbing

// sessionHandler is a handler that already holds a locked, loaded session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *game.Session)

// withGame locks the {id} session, loads it and calls h.
func (s *Server) withGame(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mu := s.store.Lock(id)
		mu.Lock()
		defer mu.Unlock()

		sess, err := s.session(r.Context(), id)
		if errors.Is(err, progress.ErrNoSession) {
			jsonError(w, "not_found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("gameId", id).Msg("load session")
			jsonError(w, "load_failed", http.StatusInternalServerError)
			return
		}
		h(w, r, sess)
	}
}

// session returns the live session, rebuilding it from its snapshot when it
// is not in memory. Callers hold the session lock.
func (s *Server) session(ctx context.Context, id string) (*game.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	snap, err := s.progress.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := s.catalog.Index(snap.PuzzleIndex)
	p := s.catalog.Get(idx)
	sess, err = game.Restore(id, idx, p.Bounds(), p.WordLocations, snap.Found)
	if err != nil {
		return nil, err
	}
	meta := sessionMeta{UserID: snap.UserID, AnonID: snap.AnonymousID, Mode: snap.Mode}
	if meta.Mode == modeDaily && !snap.StartedAt.IsZero() {
		sess.StartedAt = snap.StartedAt
		meta.Date = daily.DateKey(snap.StartedAt)
	}
	s.setMeta(id, meta)
	s.attach(sess)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Info().Str("gameId", id).Int("puzzle", idx).Int("found", sess.FoundCount()).Msg("session restored")
	return sess, nil
}

// attach publishes the session's word-found notifications on its event stream.
func (s *Server) attach(sess *game.Session) {
	sess.Listen(game.ListenerFunc(func(gs *game.Session, word string, isLastWord bool) {
		ev := events.Event{
			Type:       "word_found",
			SessionID:  gs.ID,
			Word:       word,
			IsLastWord: isLastWord,
			Puzzle:     gs.PuzzleIndex,
			Found:      gs.FoundCount(),
			Total:      gs.Total(),
		}
		s.events.Publish(ev)
		if isLastWord {
			ev.Type, ev.Word = "puzzle_complete", ""
			s.events.Publish(ev)
		}
	}))
}

func (s *Server) meta(id string) sessionMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner[id]
}

func (s *Server) setMeta(id string, m sessionMeta) {
	s.mu.Lock()
	s.owner[id] = m
	s.mu.Unlock()
}

// startSession creates, persists and registers a new session at puzzle idx.
func (s *Server) startSession(ctx context.Context, idx int, meta sessionMeta) (*game.Session, error) {
	p := s.catalog.Get(idx)
	sess := game.New("", s.catalog.Index(idx), p.Bounds(), p.WordLocations)
	s.attach(sess)

	if err := s.progress.SaveSession(ctx, progress.Snapshot{
		SessionID:   sess.ID,
		UserID:      meta.UserID,
		AnonymousID: meta.AnonID,
		Mode:        meta.Mode,
		PuzzleIndex: sess.PuzzleIndex,
		StartedAt:   sess.StartedAt,
	}); err != nil {
		return nil, err
	}
	s.setMeta(sess.ID, meta)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// callerMeta identifies the requester: signed-in user or guest cookie.
func (s *Server) callerMeta(w http.ResponseWriter, r *http.Request, mode string) sessionMeta {
	if u := currentUser(r); u != nil {
		return sessionMeta{UserID: u.ID, Mode: mode}
	}
	return sessionMeta{AnonID: s.ensureAnonID(w, r), Mode: mode}
}

// recordMatch mirrors a found word into SQLite. Failures are logged; the
// in-memory session stays authoritative until the next restart.
func (s *Server) recordMatch(ctx context.Context, sess *game.Session, res game.MatchResult) {
	if res.Outcome != game.Found {
		return
	}
	if err := s.progress.RecordFound(ctx, sess.ID, sess.PuzzleIndex, res.Key, res.Word); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("record found word")
	}

	meta := s.meta(sess.ID)
	if meta.UserID != "" {
		if err := s.progress.BumpWordFound(ctx, meta.UserID, res.IsLastWord); err != nil {
			log.Warn().Err(err).Str("user", meta.UserID).Msg("bump stats")
		}
	}
	if res.IsLastWord && meta.Mode == modeDaily {
		err := s.daily.InsertResult(ctx, daily.Result{
			UserID:      meta.owner(),
			Date:        meta.Date,
			PuzzleIndex: sess.PuzzleIndex,
			WordsFound:  sess.FoundCount(),
			ElapsedMs:   int(time.Since(sess.StartedAt).Milliseconds()),
		})
		if err != nil {
			log.Error().Err(err).Str("gameId", sess.ID).Msg("daily result")
		}
	}
}

// decodeCell reads a {col,row} body and checks it against the grid.
func decodeCell(w http.ResponseWriter, r *http.Request, b game.Bounds) (game.Cell, bool) {
	var c game.Cell
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		jsonError(w, "invalid_json", http.StatusBadRequest)
		return c, false
	}
	if !b.Contains(c) {
		jsonError(w, "out_of_bounds", http.StatusBadRequest)
		return c, false
	}
	return c, true
}

// -----------------------------------------------------------------------------
// handlers

type newGameReq struct {
	Puzzle *int `json:"puzzle"`
}

// handleNewGame starts a session and, for signed-in players, a new streak.
// The body is optional.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid_json", http.StatusBadRequest)
		return
	}
	idx := 0
	if req.Puzzle != nil {
		idx = *req.Puzzle
	}

	meta := s.callerMeta(w, r, modeNormal)
	if meta.UserID != "" {
		if err := s.progress.ResetStreak(r.Context(), meta.UserID); err != nil {
			log.Warn().Err(err).Str("user", meta.UserID).Msg("reset streak")
		}
	}
	sess, err := s.startSession(r.Context(), idx, meta)
	if err != nil {
		log.Error().Err(err).Msg("new game")
		jsonError(w, "db_error", http.StatusInternalServerError)
		return
	}
	log.Debug().Str("gameId", sess.ID).Int("puzzle", sess.PuzzleIndex).Msg("game started")
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	c, ok := decodeCell(w, r, sess.Bounds)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selectionOf(sess.Press(c)))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	c, ok := decodeCell(w, r, sess.Bounds)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selectionOf(sess.Move(c)))
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	res := sess.Release()
	s.recordMatch(r.Context(), sess, res)
	writeJSON(w, http.StatusOK, matchOf(sess, res))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	sess.Cancel()
	writeJSON(w, http.StatusOK, selectionOf(nil))
}

type selectReq struct {
	Start game.Cell `json:"start"`
	End   game.Cell `json:"end"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid_json", http.StatusBadRequest)
		return
	}
	if !sess.Bounds.Contains(req.Start) || !sess.Bounds.Contains(req.End) {
		jsonError(w, "out_of_bounds", http.StatusBadRequest)
		return
	}
	res := sess.Select(req.Start, req.End)
	s.recordMatch(r.Context(), sess, res)
	writeJSON(w, http.StatusOK, matchOf(sess, res))
}

// handleNext loads the following puzzle, wrapping after the last one.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	if s.meta(sess.ID).Mode == modeDaily {
		jsonError(w, "daily_single_puzzle", http.StatusConflict)
		return
	}
	if !sess.Complete() {
		jsonError(w, "not_complete", http.StatusConflict)
		return
	}

	next := s.catalog.Next(sess.PuzzleIndex)
	if err := s.progress.Advance(r.Context(), sess.ID, next); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("advance")
		jsonError(w, "db_error", http.StatusInternalServerError)
		return
	}
	p := s.catalog.Get(next)
	sess.Load(next, p.Bounds(), p.WordLocations)

	s.events.Publish(events.Event{
		Type:      "puzzle_changed",
		SessionID: sess.ID,
		Puzzle:    sess.PuzzleIndex,
		Total:     sess.Total(),
	})
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

// handleEvents streams a session's events, starting with a "state" event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mu := s.store.Lock(id)
	mu.Lock()
	sess, err := s.session(r.Context(), id)
	var initial events.Event
	if err == nil {
		initial = events.Event{
			Type:      "state",
			SessionID: sess.ID,
			Puzzle:    sess.PuzzleIndex,
			Found:     sess.FoundCount(),
			Total:     sess.Total(),
		}
	}
	mu.Unlock()

	if errors.Is(err, progress.ErrNoSession) {
		jsonError(w, "not_found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("load session")
		jsonError(w, "load_failed", http.StatusInternalServerError)
		return
	}
	s.events.Serve(w, r, id, &initial)
}
