// internal/progress/sessions.go
//
// Durable session progress: which puzzle a session is on and which words it
// has found there. A live game.Session can always be rebuilt from a Snapshot
// plus the puzzle catalog, so engine internals are never persisted.

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSession is returned when a session has no persisted row.
var ErrNoSession = errors.New("progress: session not found")

// Snapshot is the persisted state of one session.
type Snapshot struct {
	SessionID        string
	UserID           string // empty for guests
	AnonymousID      string // empty for signed-in users
	Mode             string // "normal" | "daily"
	PuzzleIndex      int
	PuzzlesCompleted int
	StartedAt        time.Time
	Found            map[string]string // cell key → word, current puzzle only
}

// SessionRow is a lightweight listing entry for /games/mine.
type SessionRow struct {
	ID               string `json:"id"`
	Mode             string `json:"mode"`
	PuzzleIndex      int    `json:"puzzleIndex"`
	PuzzlesCompleted int    `json:"puzzlesCompleted"`
	StartedAt        string `json:"startedAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// Store reads and writes progress rows.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// SaveSession inserts or updates the session row (not its found words).
func (s *Store) SaveSession(ctx context.Context, snap Snapshot) error {
	now := time.Now().UTC().Format(time.RFC3339)
	started := snap.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	mode := snap.Mode
	if mode == "" {
		mode = "normal"
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, user_id, anonymous_id, puzzle_index, puzzles_completed, mode, started_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            puzzle_index = excluded.puzzle_index,
            puzzles_completed = excluded.puzzles_completed,
            updated_at = excluded.updated_at`,
		snap.SessionID, nullable(snap.UserID), nullable(snap.AnonymousID), snap.PuzzleIndex,
		snap.PuzzlesCompleted, mode, started.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", snap.SessionID, err)
	}
	return nil
}

// RecordFound stores one found word. Recording the same key twice is a no-op.
func (s *Store) RecordFound(ctx context.Context, sessionID string, puzzleIndex int, key, word string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO found_words (session_id, puzzle_index, cell_key, word, found_at)
        VALUES (?, ?, ?, ?, ?)`,
		sessionID, puzzleIndex, key, word, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record found %s: %w", sessionID, err)
	}
	return nil
}

// Advance moves a session to the next puzzle and counts the completed one.
// Found words of the old puzzle are dropped.
func (s *Store) Advance(ctx context.Context, sessionID string, nextIndex int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        UPDATE sessions SET puzzle_index = ?, puzzles_completed = puzzles_completed + 1, updated_at = ?
        WHERE id = ?`, nextIndex, time.Now().UTC().Format(time.RFC3339), sessionID)
	if err != nil {
		return fmt.Errorf("advance %s: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSession
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM found_words WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear found %s: %w", sessionID, err)
	}
	return tx.Commit()
}

// LoadSnapshot reads a session row and the words found on its current puzzle.
func (s *Store) LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	var (
		snap         Snapshot
		userID, anon sql.NullString
		started      string
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, anonymous_id, mode, puzzle_index, puzzles_completed, started_at
        FROM sessions WHERE id = ?`, sessionID,
	).Scan(&snap.SessionID, &userID, &anon, &snap.Mode, &snap.PuzzleIndex, &snap.PuzzlesCompleted, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSession
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	snap.UserID, snap.AnonymousID = userID.String, anon.String
	snap.StartedAt, _ = time.Parse(time.RFC3339, started)

	rows, err := s.db.QueryContext(ctx, `
        SELECT cell_key, word FROM found_words WHERE session_id = ? AND puzzle_index = ?`,
		sessionID, snap.PuzzleIndex)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load found %s: %w", sessionID, err)
	}
	defer rows.Close()

	snap.Found = make(map[string]string)
	for rows.Next() {
		var key, word string
		if err := rows.Scan(&key, &word); err != nil {
			return Snapshot{}, err
		}
		snap.Found[key] = word
	}
	return snap, rows.Err()
}

// ClaimAnonymous transfers guest sessions to a user account after auth.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET user_id = ?, anonymous_id = NULL WHERE anonymous_id = ?`, userID, anonID)
	return err
}

// ListByUser returns a user's most recent sessions.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, mode, puzzle_index, puzzles_completed, started_at, updated_at
        FROM sessions WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SessionRow{}
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Mode, &r.PuzzleIndex, &r.PuzzlesCompleted, &r.StartedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
