// internal/store/completions.go
//
// Completion log: one row per won playthrough.
// This is the optional completion signal the surrounding training flow reads
// to move the player onward. It is write-once per (session, playthrough).

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Completion is a recorded win.
type Completion struct {
	SessionID     string    `json:"sessionId"`
	Playthrough   uint64    `json:"playthrough"`
	Word          string    `json:"word"`
	LivesLeft     int       `json:"livesLeft"`
	WrongAttempts int       `json:"wrongAttempts"`
	CompletedAt   time.Time `json:"completedAt"`
}

// CompletionStore persists completions in SQLite.
type CompletionStore struct{ db *sql.DB }

// NewCompletionStore wraps a migrated database.
func NewCompletionStore(db *sql.DB) *CompletionStore { return &CompletionStore{db: db} }

// Record inserts c. A second record for the same playthrough is ignored.
func (s *CompletionStore) Record(ctx context.Context, c Completion) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO completions
            (session_id, playthrough, word, lives_left, wrong_attempts, completed_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		c.SessionID, int64(c.Playthrough), c.Word, c.LivesLeft, c.WrongAttempts,
		c.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Latest returns the most recent completion for a session.
func (s *CompletionStore) Latest(ctx context.Context, sessionID string) (Completion, error) {
	var (
		c           Completion
		playthrough int64
		completed   string
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT session_id, playthrough, word, lives_left, wrong_attempts, completed_at
        FROM completions
        WHERE session_id=?
        ORDER BY playthrough DESC
        LIMIT 1`, sessionID,
	).Scan(&c.SessionID, &playthrough, &c.Word, &c.LivesLeft, &c.WrongAttempts, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Completion{}, ErrNotFound
	}
	if err != nil {
		return Completion{}, err
	}
	c.Playthrough = uint64(playthrough)
	c.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
	return c, nil
}
