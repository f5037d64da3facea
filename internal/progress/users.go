// internal/progress/users.go
//
// User accounts and their lifetime stats (words found, puzzles completed,
// completion streak). Password hashing lives with the auth handlers; this
// file only stores the hash.

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrUsernameTaken is returned when a username already exists (case-insensitive).
var ErrUsernameTaken = errors.New("username taken")

// User matches the users table shape.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	WordsFound       int       `json:"wordsFound"`
	PuzzlesCompleted int       `json:"puzzlesCompleted"`
	Streak           int       `json:"streak"`
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, id, username, passwordHash string) (*User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, passwordHash, now.Format(time.RFC3339))
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// FindUserByUsername loads a user, matching the username case-insensitively.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, words_found, puzzles_completed, streak
        FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

// FindUserByID loads a user by ID.
func (s *Store) FindUserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at, words_found, puzzles_completed, streak
        FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.WordsFound, &u.PuzzlesCompleted, &u.Streak); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// BumpWordFound counts one found word for userID; completing a puzzle also
// bumps puzzles_completed and the streak.
func (s *Store) BumpWordFound(ctx context.Context, userID string, completed bool) error {
	q := `UPDATE users SET words_found = words_found + 1 WHERE id=?`
	if completed {
		q = `UPDATE users SET words_found = words_found + 1,
                puzzles_completed = puzzles_completed + 1,
                streak = streak + 1
             WHERE id=?`
	}
	_, err := s.db.ExecContext(ctx, q, userID)
	return err
}

// ResetStreak zeroes the completion streak. A streak counts puzzles
// completed within one run; starting a new game ends the run.
func (s *Store) ResetStreak(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET streak = 0 WHERE id=?`, userID)
	return err
}
